// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Secret used to sign attribution codes. Rotating it invalidates all
	// outstanding codes.
	CodeSecret string `env:"CODE_SECRET,required"`

	// Salt for the truncated IP hash stored with each click.
	IPHashSalt string `env:"IP_HASH_SALT,required"`

	// Storage backend: "sqlite" (durable) or "memory" (ephemeral).
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"sqlite"`
	DatabasePath   string `env:"DATABASE_PATH" envDefault:"botlink.db"`

	// Path to the slug configuration file (JSON).
	SlugsPath string `env:"SLUGS_PATH" envDefault:"slugs.json"`

	// Resolution cache
	CacheSize int           `env:"CACHE_SIZE" envDefault:"1024"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"15m"`

	// When set, codes are deleted after their first successful resolution.
	OneTimeCodes bool `env:"ONE_TIME_CODES" envDefault:"false"`

	// Base URL the service is reachable at (used for generated link display).
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate checks constraints that env tags cannot express.
func (c *Config) Validate() error {
	if len(c.CodeSecret) < 32 {
		return fmt.Errorf("CODE_SECRET must be at least 32 bytes, got %d", len(c.CodeSecret))
	}
	switch c.StorageBackend {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (want sqlite or memory)", c.StorageBackend)
	}
	return nil
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
