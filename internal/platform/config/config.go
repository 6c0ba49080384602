// Package config builds runtime configuration from environment variables so
// main stays lean. A local .env file is loaded when present; real environments
// set variables directly.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config captures server-level configuration.
type Config struct {
	Addr        string
	Environment string // "development", "production", or "test"
	DatabaseURL string
	RedisURL    string

	// WebhookSigningSecret verifies inbound payment-provider signatures.
	WebhookSigningSecret string

	// LockoutSweepInterval controls the background cleanup of expired local
	// lockout records. The sweep is disabled entirely in the test environment.
	LockoutSweepInterval time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	// Best-effort: absence of a .env file is the normal production case.
	_ = godotenv.Load()

	cfg := Config{
		Addr:                 getEnv("UPLIFT_ADDR", ":8080"),
		Environment:          getEnv("UPLIFT_ENV", "development"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisURL:             os.Getenv("REDIS_URL"),
		WebhookSigningSecret: os.Getenv("PAYMENT_WEBHOOK_SECRET"),
		LockoutSweepInterval: 5 * time.Minute,
	}

	if v := os.Getenv("LOCKOUT_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.LockoutSweepInterval = d
		}
	}

	return cfg
}

// IsTest reports whether the service runs in the test environment, where rate
// limits become a practical no-op and background workers are disabled.
func (c Config) IsTest() bool {
	return c.Environment == "test"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
