// Package tracker runs one vehicle query end to end: fetch the feed through
// the cache, decode it, filter it and persist the artifact pair.
package tracker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/theoremus-urban-solutions/bus-tracker/artifact"
	"github.com/theoremus-urban-solutions/bus-tracker/gtfsrt"
	"github.com/theoremus-urban-solutions/bus-tracker/query"
)

// FeedSource supplies the raw vehicle positions payload
type FeedSource interface {
	FetchRawFeed(ctx context.Context) ([]byte, error)
}

// ArtifactWriter persists a query result
type ArtifactWriter interface {
	Write(ctx context.Context, result query.Result, label string) (artifact.Locators, error)
}

// Service answers vehicle queries
type Service struct {
	feed   FeedSource
	writer ArtifactWriter
}

// NewService creates a service over feed and writer
func NewService(feed FeedSource, writer ArtifactWriter) *Service {
	return &Service{feed: feed, writer: writer}
}

// Search returns the filtered snapshot without writing artifacts
func (s *Service) Search(ctx context.Context, criteria query.Criteria) (query.Result, error) {
	if err := query.Validate(criteria); err != nil {
		return query.Result{}, err
	}
	raw, err := s.feed.FetchRawFeed(ctx)
	if err != nil {
		return query.Result{}, fmt.Errorf("fetch %s: %w", gtfsrt.VehiclePositionsSource, err)
	}
	records, err := gtfsrt.Decode(raw)
	if err != nil {
		return query.Result{}, err
	}
	return query.Evaluate(records, criteria)
}

// Locate runs the query and writes its artifacts, returning their locators
// and the number of matching vehicles.
func (s *Service) Locate(ctx context.Context, criteria query.Criteria) (artifact.Locators, int, error) {
	result, err := s.Search(ctx, criteria)
	if err != nil {
		log.Warn().Err(err).Str("source", gtfsrt.VehiclePositionsSource).Str("criteria", label(criteria)).Msg("Vehicle query failed")
		return artifact.Locators{}, 0, err
	}

	loc, err := s.writer.Write(ctx, result, criteria.Label())
	if err != nil {
		return loc, result.Len(), fmt.Errorf("%s query: %w", criteria.Label(), err)
	}

	log.Info().
		Str("source", gtfsrt.VehiclePositionsSource).
		Str("criteria", criteria.Label()).
		Int("count", result.Len()).
		Str("map", loc.MapURL).
		Msg("Vehicle query served")
	return loc, result.Len(), nil
}

func label(c query.Criteria) string {
	if c == nil {
		return "none"
	}
	return c.Label()
}

// ParseSearch maps a search type and its identifiers onto a criteria.
// searchType is one of all, route or bus.
func ParseSearch(searchType, routeNum, busID string) (query.Criteria, error) {
	switch searchType {
	case "all":
		return query.All{}, nil
	case "route":
		return query.NewByRoute(routeNum)
	case "bus":
		return query.NewByVehicle(busID)
	}
	return nil, &query.InvalidCriteriaError{Reason: fmt.Sprintf("unknown search type %q", searchType)}
}
