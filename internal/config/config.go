// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// DevSecret is the placeholder signing secret used when JWT_SECRET is unset.
// It is well known and must never be used outside local development.
const DevSecret = "dev-secret"

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL selects the credential store: sqlite://<path> or a postgres:// DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecret is the HMAC signing secret for bearer tokens. Defaults to DevSecret.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTExpSeconds is the token lifetime in seconds (default 86400, one day).
	JWTExpSeconds int `mapstructure:"JWT_EXP_SECONDS"`
	// BcryptCost is the bcrypt cost factor (4–31); 0 means the bcrypt default.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// CORSOrigin is the single allowed cross-origin (default http://localhost:5500).
	CORSOrigin string `mapstructure:"CORS_ORIGIN"`
	// GeminiAPIKey is the generative-language API key. Empty means offline mode:
	// the relay answers with a deterministic mock and never dials out.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	// GeminiModel is the model used for generateContent (default gemini-1.5-flash).
	GeminiModel string `mapstructure:"GEMINI_MODEL"`
	// GeminiBaseURL overrides the API endpoint; useful for tests.
	GeminiBaseURL string `mapstructure:"GEMINI_BASE_URL"`
	// UpstreamTimeout bounds the relay's upstream call (e.g. "60s") so a hanging
	// upstream cannot pin request handlers indefinitely.
	UpstreamTimeout string `mapstructure:"UPSTREAM_TIMEOUT"`
	// Env is the application environment (e.g. "development", "production").
	// Running production with the placeholder secret is refused at startup.
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("DATABASE_URL", "sqlite://chat.db")
	v.SetDefault("JWT_SECRET", DevSecret)
	v.SetDefault("JWT_EXP_SECONDS", 86400)
	v.SetDefault("BCRYPT_COST", 0)
	v.SetDefault("CORS_ORIGIN", "http://localhost:5500")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")
	v.SetDefault("UPSTREAM_TIMEOUT", "60s")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("config: DATABASE_URL must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET must not be empty")
	}
	if cfg.Env == "production" && cfg.JWTSecret == DevSecret {
		return nil, errors.New("config: JWT_SECRET must be set explicitly when APP_ENV=production")
	}
	if cfg.JWTExpSeconds <= 0 {
		return nil, errors.New("config: JWT_EXP_SECONDS must be positive")
	}
	if cfg.BcryptCost != 0 && (cfg.BcryptCost < 4 || cfg.BcryptCost > 31) {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// TokenTTL returns the configured token lifetime as a time.Duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpSeconds) * time.Second
}

// UpstreamTimeoutDuration parses UpstreamTimeout. Returns 60s if unset or invalid.
func (c *Config) UpstreamTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.UpstreamTimeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}
