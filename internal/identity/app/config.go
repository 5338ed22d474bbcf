package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full runtime configuration, populated from the environment.
// Token verification keys come either from a JWKS endpoint on the auth
// service or from a static PEM file; at least one must be set.
type Config struct {
	// Issuer the auth service stamps into tokens. Empty disables the check.
	Issuer string `env:"IDENTITY_ISSUER"`

	// Audience values a token must carry. Empty disables the check.
	Audience []string `env:"IDENTITY_AUDIENCE"`

	// JWKSURL is the auth service's JWKS endpoint.
	JWKSURL string `env:"IDENTITY_JWKS_URL"`

	// PublicKeyFile is a PEM-encoded verification key, used when no JWKS
	// endpoint is reachable (local development, tests).
	PublicKeyFile string `env:"IDENTITY_PUBLIC_KEY_FILE"`

	DatabaseFile string `env:"IDENTITY_DATABASE_FILE" envDefault:"identity.db"`

	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	Port      int    `env:"PORT" envDefault:"8080"`

	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	// HistoryRetention bounds the switch-history audit trail.
	HistoryRetention time.Duration `env:"HISTORY_RETENTION" envDefault:"2160h"` // 90 days
}

// LoadConfig parses configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.JWKSURL == "" && cfg.PublicKeyFile == "" {
		return Config{}, fmt.Errorf("either IDENTITY_JWKS_URL or IDENTITY_PUBLIC_KEY_FILE must be set")
	}

	return cfg, nil
}
