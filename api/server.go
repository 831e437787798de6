// Package api exposes vehicle queries, league statistics, health and metrics
// over HTTP.
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/theoremus-urban-solutions/bus-tracker/artifact"
	"github.com/theoremus-urban-solutions/bus-tracker/cache"
	"github.com/theoremus-urban-solutions/bus-tracker/league"
	"github.com/theoremus-urban-solutions/bus-tracker/query"
)

// VehicleLocator runs a vehicle query and persists its artifacts
type VehicleLocator interface {
	Locate(ctx context.Context, criteria query.Criteria) (artifact.Locators, int, error)
}

// LeagueSource reads Fantasy Premier League data
type LeagueSource interface {
	Bootstrap(ctx context.Context) (*league.Bootstrap, error)
	StandingsWithHistory(ctx context.Context, limit int) ([]league.Manager, error)
	LeagueHistory(ctx context.Context, limit int) ([]league.Gameweek, error)
}

// CacheInspector exposes cache entries without refreshing them
type CacheInspector interface {
	Peek(sourceKey string) (cache.Entry, bool)
}

// Options configures the HTTP surface
type Options struct {
	// StaticDir is served under StaticPrefix
	StaticDir    string
	StaticPrefix string
	// HistoryLimit is the default number of managers for league endpoints
	HistoryLimit   int
	RequestTimeout time.Duration
}

// Server is the HTTP application
type Server struct {
	app     *fiber.App
	tracker VehicleLocator
	league  LeagueSource
	cache   CacheInspector
	opts    Options
}

// NewServer wires all routes
func NewServer(tracker VehicleLocator, leagueSource LeagueSource, inspector CacheInspector, opts Options) *Server {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 10
	}
	s := &Server{
		tracker: tracker,
		league:  leagueSource,
		cache:   inspector,
		opts:    opts,
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           60 * time.Second,
	})
	s.app.Use(NewLogger())

	s.app.Post("/generate_map", s.generateMap)
	s.app.Post("/filter_buses", s.filterBuses)
	s.app.Get("/bus/vehicles", s.vehicles)

	fpl := s.app.Group("/fpl/api")
	fpl.Get("/players", s.players)
	fpl.Get("/top-performers", s.topPerformers)
	fpl.Get("/value-picks", s.valuePicks)
	fpl.Get("/league", s.leagueStandings)
	fpl.Get("/league/history", s.leagueHistory)

	s.app.Get("/api/health", s.health)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if opts.StaticDir != "" && opts.StaticPrefix != "" {
		s.app.Static(opts.StaticPrefix, opts.StaticDir)
	}
	return s
}

// App returns the underlying fiber application
func (s *Server) App() *fiber.App { return s.app }

// Run listens on addr until ctx is cancelled, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr)
	}()
	log.Info().Str("addr", addr).Msg("Server listening")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Msg("Server shut down successfully")
	return nil
}

// requestContext bounds handler work by the configured request timeout
func (s *Server) requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	ctx := c.UserContext()
	if s.opts.RequestTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.RequestTimeout)
	}
	return context.WithCancel(ctx)
}
