package main

import (
	"strings"

	"github.com/theoremus-urban-solutions/bus-tracker/artifact"
	"github.com/theoremus-urban-solutions/bus-tracker/cache"
	"github.com/theoremus-urban-solutions/bus-tracker/config"
	"github.com/theoremus-urban-solutions/bus-tracker/gtfsrt"
	"github.com/theoremus-urban-solutions/bus-tracker/league"
	"github.com/theoremus-urban-solutions/bus-tracker/mapview"
	"github.com/theoremus-urban-solutions/bus-tracker/tracker"
	"github.com/theoremus-urban-solutions/bus-tracker/upstream"
)

// components holds the wired service graph shared by every command
type components struct {
	cache   *cache.TTLCache
	fetcher *gtfsrt.Fetcher
	tracker *tracker.Service
	league  *league.Client
}

func buildComponents(cfg *config.AppConfig) *components {
	sources := cache.New(cfg.Cache.Size)

	fetcher := gtfsrt.NewFetcher(
		sources,
		upstream.NewClient(cfg.Feed.Timeout()),
		cfg.Feed.VehiclePositionsURL,
		cfg.Feed.CacheTTL(),
	)

	writer := artifact.NewWriter(artifact.Config{
		OutputDir:    cfg.Artifacts.OutputDir,
		PublicPrefix: cfg.Artifacts.PublicPrefix,
		Center:       mapview.LatLon{Lat: cfg.Artifacts.MapCenterLat, Lon: cfg.Artifacts.MapCenterLon},
		Zoom:         cfg.Artifacts.MapZoom,
	}, mapview.NewLeaflet(), nil)

	leagueClient := league.NewClient(sources, upstream.NewClient(cfg.League.Timeout()), league.Config{
		BaseURL:     cfg.League.BaseURL,
		LeagueID:    cfg.League.LeagueID,
		Concurrency: cfg.League.Concurrency,
		TTL:         cfg.League.CacheTTL(),
	})

	return &components{
		cache:   sources,
		fetcher: fetcher,
		tracker: tracker.NewService(fetcher, writer),
		league:  leagueClient,
	}
}

// staticPrefix is the route artifacts are served under
func staticPrefix(cfg *config.AppConfig) string {
	return strings.TrimSuffix(cfg.Artifacts.PublicPrefix, "/")
}
