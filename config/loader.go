package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// DefaultPaths are searched in order when no explicit config path is given
var DefaultPaths = []string{"config.yml", "./config/config.yml"}

const (
	defaultPort                = 8080
	defaultShutdownTimeoutMS   = 10000
	defaultVehiclePositionsURL = "https://gtfs.halifax.ca/realtime/Vehicle/VehiclePositions.pb"
	defaultTimeoutMS           = 10000
	defaultCacheTTLSeconds     = 15 * 60
	defaultOutputDir           = "static/locationdata"
	defaultPublicPrefix        = "/static/locationdata/"
	defaultMapCenterLat        = 44.6488
	defaultMapCenterLon        = -63.5752
	defaultMapZoom             = 12
	defaultLeagueBaseURL       = "https://fantasy.premierleague.com/api"
	defaultLeagueID            = 247541
	defaultHistoryLimit        = 10
	defaultLeagueConcurrency   = 4
	defaultCacheSize           = 256
)

// Defaults returns a configuration with every default applied
func Defaults() AppConfig {
	var cfg AppConfig
	applyDefaults(&cfg)
	return cfg
}

// LoadAppConfig loads and validates the application configuration from the
// default paths into Config. Missing files fall back to defaults.
func LoadAppConfig() error {
	cfg, err := LoadOptional(DefaultPaths...)
	if err != nil {
		return err
	}
	Config = *cfg
	return nil
}

// Load reads the first readable file of paths, applies defaults and
// environment overrides, then validates the result.
func Load(paths ...string) (*AppConfig, error) {
	if len(paths) == 0 {
		return nil, errors.New("no config paths given")
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	if err := applyEnvironment(&cfg, environmentVariables()); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOptional behaves like Load but uses defaults and environment overrides
// when none of paths exists.
func LoadOptional(paths ...string) (*AppConfig, error) {
	cfg, err := Load(paths...)
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}
	def := Defaults()
	if err := applyEnvironment(&def, environmentVariables()); err != nil {
		return nil, err
	}
	if err := Validate(&def); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks cfg against its struct tags
func Validate(cfg *AppConfig) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.Server.ShutdownTimeoutMS == 0 {
		cfg.Server.ShutdownTimeoutMS = defaultShutdownTimeoutMS
	}
	if cfg.Feed.VehiclePositionsURL == "" {
		cfg.Feed.VehiclePositionsURL = defaultVehiclePositionsURL
	}
	if cfg.Feed.TimeoutMS == 0 {
		cfg.Feed.TimeoutMS = defaultTimeoutMS
	}
	if cfg.Feed.CacheTTLSeconds == 0 {
		cfg.Feed.CacheTTLSeconds = defaultCacheTTLSeconds
	}
	if cfg.Artifacts.OutputDir == "" {
		cfg.Artifacts.OutputDir = defaultOutputDir
	}
	if cfg.Artifacts.PublicPrefix == "" {
		cfg.Artifacts.PublicPrefix = defaultPublicPrefix
	}
	// 0,0 is a legitimate coordinate but not a useful map centre for this service.
	if cfg.Artifacts.MapCenterLat == 0 && cfg.Artifacts.MapCenterLon == 0 {
		cfg.Artifacts.MapCenterLat = defaultMapCenterLat
		cfg.Artifacts.MapCenterLon = defaultMapCenterLon
	}
	if cfg.Artifacts.MapZoom == 0 {
		cfg.Artifacts.MapZoom = defaultMapZoom
	}
	if cfg.League.BaseURL == "" {
		cfg.League.BaseURL = defaultLeagueBaseURL
	}
	if cfg.League.LeagueID == 0 {
		cfg.League.LeagueID = defaultLeagueID
	}
	if cfg.League.HistoryLimit == 0 {
		cfg.League.HistoryLimit = defaultHistoryLimit
	}
	if cfg.League.Concurrency == 0 {
		cfg.League.Concurrency = defaultLeagueConcurrency
	}
	if cfg.League.TimeoutMS == 0 {
		cfg.League.TimeoutMS = defaultTimeoutMS
	}
	if cfg.League.CacheTTLSeconds == 0 {
		cfg.League.CacheTTLSeconds = defaultCacheTTLSeconds
	}
	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = defaultCacheSize
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

func environmentVariables() map[string]string {
	env := map[string]string{}
	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)
		if len(pair) == 2 {
			env[pair[0]] = pair[1]
		}
	}
	return env
}

func applyEnvironment(cfg *AppConfig, env map[string]string) error {
	if v := env["BUSTRACKER_PORT"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BUSTRACKER_PORT: %w", err)
		}
		cfg.Server.Port = n
	}
	if v := env["BUSTRACKER_FEED_URL"]; v != "" {
		cfg.Feed.VehiclePositionsURL = v
	}
	if v := env["BUSTRACKER_OUTPUT_DIR"]; v != "" {
		cfg.Artifacts.OutputDir = v
	}
	if v := env["BUSTRACKER_LEAGUE_ID"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BUSTRACKER_LEAGUE_ID: %w", err)
		}
		cfg.League.LeagueID = n
	}
	if env["BUSTRACKER_LOG_FORMAT"] == "JSON" {
		cfg.Logging.Format = "json"
	}
	if env["BUSTRACKER_DEBUG"] == "YES" {
		cfg.Logging.Debug = true
	}
	return nil
}
