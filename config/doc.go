// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml, validated using struct tags and
// then overridden from BUSTRACKER_* environment variables. Sections cover the
// HTTP server, the vehicle positions feed, artifact output, the league
// statistics API, the shared cache and logging.
package config
