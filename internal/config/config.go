// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Storage backends accepted in STORAGE_BACKEND.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// Addr is the address the HTTP server listens on (e.g. :8080).
	Addr string `mapstructure:"ADDR"`
	// WebDir is the directory the single page app is served from.
	WebDir string `mapstructure:"WEB_DIR"`
	// Env is the application environment. "production" selects JSON logs.
	Env string `mapstructure:"APP_ENV"`
	// LogLevel is a zap level name (debug, info, warn, error).
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// StorageBackend is "memory" or "postgres".
	StorageBackend string `mapstructure:"STORAGE_BACKEND"`
	// DatabaseURL is the Postgres DSN; required for the postgres backend.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// SessionTTL is the session cookie lifetime (e.g. "24h").
	SessionTTL string `mapstructure:"SESSION_TTL"`
	// BcryptCost is the bcrypt cost factor (4-31).
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	OIDCIssuer       string `mapstructure:"OIDC_ISSUER"`
	OIDCClientID     string `mapstructure:"OIDC_CLIENT_ID"`
	OIDCClientSecret string `mapstructure:"OIDC_CLIENT_SECRET"`
	OIDCRedirectURL  string `mapstructure:"OIDC_REDIRECT_URL"`

	// InitialUser and InitialPassword bootstrap the first caregiver when the
	// user table is empty.
	InitialUser     string `mapstructure:"INITIAL_USER"`
	InitialPassword string `mapstructure:"INITIAL_PASSWORD"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored. Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("ADDR", ":8080")
	v.SetDefault("WEB_DIR", "web")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_BACKEND", StorageMemory)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("OIDC_ISSUER", "")
	v.SetDefault("OIDC_CLIENT_ID", "")
	v.SetDefault("OIDC_CLIENT_SECRET", "")
	v.SetDefault("OIDC_REDIRECT_URL", "")
	v.SetDefault("INITIAL_USER", "")
	v.SetDefault("INITIAL_PASSWORD", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("config: ADDR must be set")
	}

	switch cfg.StorageBackend {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("config: DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("config: STORAGE_BACKEND must be %q or %q, got %q", StorageMemory, StoragePostgres, cfg.StorageBackend)
	}

	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if d, err := time.ParseDuration(cfg.SessionTTL); err != nil || d <= 0 {
		return nil, fmt.Errorf("config: SESSION_TTL %q is not a positive duration", cfg.SessionTTL)
	}

	if cfg.OIDCIssuer != "" && (cfg.OIDCClientID == "" || cfg.OIDCRedirectURL == "") {
		return nil, errors.New("config: OIDC_CLIENT_ID and OIDC_REDIRECT_URL must be set with OIDC_ISSUER")
	}

	if (cfg.InitialUser == "") != (cfg.InitialPassword == "") {
		return nil, errors.New("config: INITIAL_USER and INITIAL_PASSWORD must be set together")
	}

	return &cfg, nil
}

// SessionDuration parses SessionTTL. Returns 24h if unset or invalid.
func (c *Config) SessionDuration() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// OIDCEnabled reports whether SSO is configured.
func (c *Config) OIDCEnabled() bool {
	return c != nil && c.OIDCIssuer != ""
}
