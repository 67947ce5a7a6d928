// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GYSD Contributors

// Package config loads server configuration from defaults, an optional YAML
// file, and command-line flags, in increasing order of precedence.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is the full server configuration.
type Config struct {
	Database      DatabaseConfig      `koanf:"database"`
	HTTP          HTTPConfig          `koanf:"http"`
	Observability ObservabilityConfig `koanf:"observability"`
	Session       SessionConfig       `koanf:"session"`
	Log           LogConfig           `koanf:"log"`
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// HTTPConfig holds the API server settings.
type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ObservabilityConfig holds the metrics/health server settings.
type ObservabilityConfig struct {
	Addr string `koanf:"addr"`
}

// SessionConfig holds session lifecycle settings.
type SessionConfig struct {
	// MaxAge is the sliding-window session lifetime.
	MaxAge time.Duration `koanf:"max_age"`
	// PruneInterval is how often expired sessions are swept.
	PruneInterval time.Duration `koanf:"prune_interval"`
	// CookieSecure marks the session cookie Secure; disable only for
	// local plain-HTTP development.
	CookieSecure bool `koanf:"cookie_secure"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// defaults are the lowest-precedence configuration values.
func defaults() map[string]any {
	return map[string]any{
		"http.addr":              ":8080",
		"http.read_timeout":      "10s",
		"http.write_timeout":     "10s",
		"http.shutdown_timeout":  "15s",
		"observability.addr":     "127.0.0.1:9100",
		"session.max_age":        "24h",
		"session.prune_interval": "5m",
		"session.cookie_secure":  true,
		"log.format":             "json",
		"log.level":              "info",
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then any set flags. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_DEFAULTS_FAILED").Wrap(err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants that koanf cannot express.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}
	if c.Session.MaxAge <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("session.max_age must be positive")
	}
	if c.Session.PruneInterval <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("session.prune_interval must be positive")
	}
	return nil
}
