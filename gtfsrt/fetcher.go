package gtfsrt

import (
	"context"
	"time"

	"github.com/theoremus-urban-solutions/bus-tracker/cache"
)

// VehiclePositionsSource is the cache key of the vehicle positions feed
const VehiclePositionsSource = "vehiclePositions"

// SourceCache serves payloads per source key, fetching when stale
type SourceCache interface {
	Get(ctx context.Context, sourceKey string, fetch cache.FetchFunc, ttl time.Duration) ([]byte, error)
}

// Retriever fetches a remote payload
type Retriever interface {
	Get(ctx context.Context, sourceKey, url string) ([]byte, error)
}

// Fetcher pulls the vehicle positions feed through the source cache
type Fetcher struct {
	cache  SourceCache
	client Retriever
	url    string
	ttl    time.Duration
}

// NewFetcher creates a fetcher for the feed published at url
func NewFetcher(c SourceCache, client Retriever, url string, ttl time.Duration) *Fetcher {
	return &Fetcher{cache: c, client: client, url: url, ttl: ttl}
}

// FetchRawFeed returns the feed payload, from cache when fresh. Only payloads
// that decode are cached, so a corrupt publish is not served for a whole TTL.
func (f *Fetcher) FetchRawFeed(ctx context.Context) ([]byte, error) {
	return f.cache.Get(ctx, VehiclePositionsSource, f.retrieve, f.ttl)
}

// Fetch returns the decoded records of the current feed
func (f *Fetcher) Fetch(ctx context.Context) ([]VehicleRecord, error) {
	raw, err := f.FetchRawFeed(ctx)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

func (f *Fetcher) retrieve(ctx context.Context) ([]byte, error) {
	raw, err := f.client.Get(ctx, VehiclePositionsSource, f.url)
	if err != nil {
		return nil, err
	}
	if _, err := DecodeFeed(raw); err != nil {
		return nil, err
	}
	return raw, nil
}
