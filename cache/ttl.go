package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bluele/gcache"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/theoremus-urban-solutions/bus-tracker/internal/metrics"
)

// FetchFunc retrieves a fresh payload for a source
type FetchFunc func(ctx context.Context) ([]byte, error)

// Entry is the last successful fetch of a source
type Entry struct {
	SourceKey string
	Payload   []byte
	FetchedAt time.Time
}

// TTLCache serves cached payloads per source key until they expire
type TTLCache struct {
	store gcache.Cache
	clock gcache.Clock
	group singleflight.Group
}

// Option configures a TTLCache
type Option func(*TTLCache)

// WithClock replaces the wall clock, typically with gcache.NewFakeClock() in tests
func WithClock(clock gcache.Clock) Option {
	return func(c *TTLCache) {
		c.clock = clock
	}
}

// New creates a cache able to hold size sources. Entries carry no store-level
// expiry, so nothing is evicted while fewer than size sources are in use.
func New(size int, opts ...Option) *TTLCache {
	c := &TTLCache{clock: gcache.NewRealClock()}
	for _, opt := range opts {
		opt(c)
	}
	c.store = gcache.New(size).Simple().Build()
	return c
}

// Get returns the payload for sourceKey, invoking fetch only when there is no
// entry younger than ttl.
func (c *TTLCache) Get(ctx context.Context, sourceKey string, fetch FetchFunc, ttl time.Duration) ([]byte, error) {
	if payload, ok := c.fresh(sourceKey, ttl); ok {
		metrics.CacheRequests.WithLabelValues(sourceKey, "hit").Inc()
		return payload, nil
	}

	v, err, shared := c.group.Do(sourceKey, func() (interface{}, error) {
		// a caller that finished just before us may already have refreshed it
		if payload, ok := c.fresh(sourceKey, ttl); ok {
			return payload, nil
		}
		startedAt := c.clock.Now()
		payload, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		entry := Entry{SourceKey: sourceKey, Payload: payload, FetchedAt: startedAt}
		if err := c.store.Set(sourceKey, entry); err != nil {
			return nil, fmt.Errorf("store %s: %w", sourceKey, err)
		}
		log.Debug().Str("source", sourceKey).Int("bytes", len(payload)).Msg("Source cache refreshed")
		return payload, nil
	})
	if err != nil {
		metrics.CacheRequests.WithLabelValues(sourceKey, "error").Inc()
		log.Warn().Err(err).Str("source", sourceKey).Bool("shared", shared).Msg("Source refresh failed")
		return nil, err
	}
	metrics.CacheRequests.WithLabelValues(sourceKey, "miss").Inc()
	return v.([]byte), nil
}

// Peek returns the current entry for sourceKey regardless of its age
func (c *TTLCache) Peek(sourceKey string) (Entry, bool) {
	v, err := c.store.Get(sourceKey)
	if err != nil {
		return Entry{}, false
	}
	e, ok := v.(Entry)
	return e, ok
}

func (c *TTLCache) fresh(sourceKey string, ttl time.Duration) ([]byte, bool) {
	e, ok := c.Peek(sourceKey)
	if !ok || c.clock.Now().Sub(e.FetchedAt) >= ttl {
		return nil, false
	}
	return e.Payload, true
}
