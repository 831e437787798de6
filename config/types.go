package config

import "time"

// ServerConfig contains server configuration
type ServerConfig struct {
	Port              int `yaml:"port" validate:"gt=0,lte=65535"`
	ShutdownTimeoutMS int `yaml:"shutdownTimeoutMS" validate:"gte=0"`
}

// FeedConfig contains GTFS-Realtime vehicle positions feed configuration
type FeedConfig struct {
	VehiclePositionsURL string `yaml:"vehiclePositionsURL" validate:"required,url"`
	TimeoutMS           int    `yaml:"timeoutMS" validate:"gte=0"`
	CacheTTLSeconds     int    `yaml:"cacheTTLSeconds" validate:"gt=0"`
}

// ArtifactsConfig controls where query results are written and how they are linked
type ArtifactsConfig struct {
	OutputDir    string  `yaml:"outputDir" validate:"required"`
	PublicPrefix string  `yaml:"publicPrefix" validate:"required"`
	MapCenterLat float64 `yaml:"mapCenterLat" validate:"gte=-90,lte=90"`
	MapCenterLon float64 `yaml:"mapCenterLon" validate:"gte=-180,lte=180"`
	MapZoom      int     `yaml:"mapZoom" validate:"gte=1,lte=19"`
}

// LeagueConfig contains Fantasy Premier League API configuration
type LeagueConfig struct {
	BaseURL         string `yaml:"baseURL" validate:"required,url"`
	LeagueID        int    `yaml:"leagueID" validate:"gt=0"`
	HistoryLimit    int    `yaml:"historyLimit" validate:"gte=0"`
	Concurrency     int    `yaml:"concurrency" validate:"gt=0"`
	TimeoutMS       int    `yaml:"timeoutMS" validate:"gte=0"`
	CacheTTLSeconds int    `yaml:"cacheTTLSeconds" validate:"gt=0"`
}

// CacheConfig sizes the shared source cache
type CacheConfig struct {
	Size int `yaml:"size" validate:"gt=0"`
}

// LoggingConfig selects the log output format and level
type LoggingConfig struct {
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
	Debug  bool   `yaml:"debug"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server    ServerConfig    `yaml:"server" validate:"required"`
	Feed      FeedConfig      `yaml:"feed" validate:"required"`
	Artifacts ArtifactsConfig `yaml:"artifacts" validate:"required"`
	League    LeagueConfig    `yaml:"league" validate:"required"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Timeout returns the upstream request timeout for the feed
func (f FeedConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutMS) * time.Millisecond
}

// CacheTTL returns how long a fetched feed stays fresh
func (f FeedConfig) CacheTTL() time.Duration {
	return time.Duration(f.CacheTTLSeconds) * time.Second
}

func (l LeagueConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutMS) * time.Millisecond
}

func (l LeagueConfig) CacheTTL() time.Duration {
	return time.Duration(l.CacheTTLSeconds) * time.Second
}

func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutMS) * time.Millisecond
}
