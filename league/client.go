// Package league serves Fantasy Premier League data: player tables built from
// the bootstrap document and a classic league's standings with each
// manager's gameweek history.
package league

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/theoremus-urban-solutions/bus-tracker/cache"
	"github.com/theoremus-urban-solutions/bus-tracker/upstream"
)

// Cache keys of the league sources
const (
	BootstrapSource = "bootstrap"
	LeagueSource    = "league"
	historySource   = "entryHistory"
)

// SourceCache serves payloads per source key, fetching when stale
type SourceCache interface {
	Get(ctx context.Context, sourceKey string, fetch cache.FetchFunc, ttl time.Duration) ([]byte, error)
}

// Retriever fetches a remote payload
type Retriever interface {
	Get(ctx context.Context, sourceKey, url string) ([]byte, error)
}

// Config locates the game API and the league to follow
type Config struct {
	BaseURL     string
	LeagueID    int
	Concurrency int
	TTL         time.Duration
}

// Client reads league data through the source cache
type Client struct {
	cache  SourceCache
	remote Retriever
	cfg    Config
}

// NewClient creates a league client
func NewClient(c SourceCache, remote Retriever, cfg Config) *Client {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Client{cache: c, remote: remote, cfg: cfg}
}

// Bootstrap returns the players, teams and positions document
func (c *Client) Bootstrap(ctx context.Context) (*Bootstrap, error) {
	var data Bootstrap
	if err := c.cached(ctx, BootstrapSource, c.cfg.BaseURL+"/bootstrap-static/", &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Standings returns the league table
func (c *Client) Standings(ctx context.Context) (*Standings, error) {
	var data Standings
	url := fmt.Sprintf("%s/leagues-classic/%d/standings/", c.cfg.BaseURL, c.cfg.LeagueID)
	if err := c.cached(ctx, LeagueSource, url, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// StandingsWithHistory returns the first limit managers, each with their
// gameweek history attached. A manager whose history cannot be fetched gets
// an empty history.
func (c *Client) StandingsWithHistory(ctx context.Context, limit int) ([]Manager, error) {
	standings, err := c.Standings(ctx)
	if err != nil {
		return nil, err
	}
	managers := firstManagers(standings, limit)
	histories := c.histories(ctx, managers)
	for i := range managers {
		managers[i].History = histories[i]
		if managers[i].History == nil {
			managers[i].History = []Gameweek{}
		}
	}
	return managers, nil
}

// LeagueHistory returns the gameweeks of the first limit managers, tagged with
// the manager's name and id, in standings order. Managers whose history
// cannot be fetched contribute nothing.
func (c *Client) LeagueHistory(ctx context.Context, limit int) ([]Gameweek, error) {
	standings, err := c.Standings(ctx)
	if err != nil {
		return nil, err
	}
	managers := firstManagers(standings, limit)
	histories := c.histories(ctx, managers)

	out := []Gameweek{}
	for i, m := range managers {
		for _, gw := range histories[i] {
			gw.ManagerName = m.PlayerName
			gw.ManagerID = m.Entry
			out = append(out, gw)
		}
	}
	return out, nil
}

type indexedHistory struct {
	index    int
	gameweek []Gameweek
}

// histories fetches every manager's history concurrently; the result is
// aligned with managers and holds nil for failures.
func (c *Client) histories(ctx context.Context, managers []Manager) [][]Gameweek {
	p := pool.NewWithResults[indexedHistory]().WithMaxGoroutines(c.cfg.Concurrency)
	for i, m := range managers {
		p.Go(func() indexedHistory {
			h, err := c.history(ctx, m.Entry)
			if err != nil {
				log.Error().Err(err).Int("manager", m.Entry).Msg("Failed to fetch manager history")
				return indexedHistory{index: i}
			}
			return indexedHistory{index: i, gameweek: h}
		})
	}

	out := make([][]Gameweek, len(managers))
	for _, r := range p.Wait() {
		out[r.index] = r.gameweek
	}
	return out
}

func (c *Client) history(ctx context.Context, entry int) ([]Gameweek, error) {
	url := fmt.Sprintf("%s/entry/%d/history/", c.cfg.BaseURL, entry)
	raw, err := c.remote.Get(ctx, historySource, url)
	if err != nil {
		return nil, err
	}
	var h entryHistory
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("decode history of %d: %w", entry, err)
	}
	if h.Current == nil {
		h.Current = []Gameweek{}
	}
	return h.Current, nil
}

// cached decodes the payload of sourceKey into v. Payloads that do not decode
// are rejected before they reach the cache.
func (c *Client) cached(ctx context.Context, sourceKey, url string, v interface{}) error {
	raw, err := c.cache.Get(ctx, sourceKey, func(ctx context.Context) ([]byte, error) {
		raw, err := c.remote.Get(ctx, sourceKey, url)
		if err != nil {
			return nil, err
		}
		if !json.Valid(raw) {
			return nil, &upstream.FetchError{SourceKey: sourceKey, URL: url, Err: errors.New("response is not JSON")}
		}
		return raw, nil
	}, c.cfg.TTL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", sourceKey, err)
	}
	return nil
}

func firstManagers(s *Standings, limit int) []Manager {
	results := s.Standings.Results
	if limit >= 0 && len(results) > limit {
		results = results[:limit]
	}
	managers := make([]Manager, len(results))
	copy(managers, results)
	return managers
}
