package app

import (
	"errors"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the console.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:"127.0.0.1:8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// APIBaseURL points at the Niaxtu platform API the console drives.
	APIBaseURL string        `envconfig:"API_BASE_URL" default:"http://127.0.0.1:3000/api/v1"`
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"15s"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	VisitTTL   time.Duration `envconfig:"VISIT_TTL" default:"720h"`
	CSRFSecret string        `envconfig:"CSRF_SECRET" required:"true"`

	// TrustCachedSession reuses a cached token on startup without a
	// server round-trip; set false to force verification.
	TrustCachedSession bool          `envconfig:"TRUST_CACHED_SESSION" default:"true"`
	StatsCacheTTL      time.Duration `envconfig:"STATS_CACHE_TTL" default:"30s"`

	// VerifyInterval drives the worker's periodic session re-check.
	VerifyInterval time.Duration `envconfig:"VERIFY_INTERVAL" default:"5m"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if !strings.HasPrefix(cfg.APIBaseURL, "http") {
		return nil, errors.New("api base url must be an http(s) address")
	}
	return &cfg, nil
}

// IsProduction returns true when the console runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
