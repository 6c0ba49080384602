package config

import (
	"time"

	"uplift/internal/ratelimit/models"
)

// disabledMax is the effective limit when rate limiting is disabled (test
// runs). High enough to be a practical no-op while leaving every other code
// path identical.
const disabledMax = 1 << 30

// LimiterConfig parameterizes one request limiter instance.
type LimiterConfig struct {
	Name      string
	KeyPrefix string
	Window    time.Duration
	Max       int

	// SkipSuccessful refunds budget for requests that succeed, so only failed
	// attempts consume it. Used for authentication endpoints.
	SkipSuccessful bool
}

// EffectiveMax returns the limit to enforce, honoring the disabled mode.
func (c LimiterConfig) EffectiveMax(disabled bool) int {
	if disabled {
		return disabledMax
	}
	return c.Max
}

// LockoutConfig parameterizes the account lockout tracker.
type LockoutConfig struct {
	MaxAttempts     int           // failures that trigger a lock
	LockoutDuration time.Duration // how long a lock holds
	RecordTTL       time.Duration // shared-store TTL for records not yet locked
	SweepInterval   time.Duration // local-store cleanup cadence
}

// Config holds all abuse-prevention configuration.
type Config struct {
	API           LimiterConfig
	Auth          LimiterConfig
	PasswordReset LimiterConfig
	Registration  LimiterConfig
	Lockout       LockoutConfig

	// Disabled raises every limiter's effective max to a practical no-op.
	// Lockout tracking is unaffected; functional tests exercise it directly.
	Disabled bool
}

// Limiters returns the configured limiter instances in a fixed order.
func (c *Config) Limiters() []LimiterConfig {
	return []LimiterConfig{c.API, c.Auth, c.PasswordReset, c.Registration}
}

// DefaultConfig returns the production limits.
func DefaultConfig() *Config {
	return &Config{
		API: LimiterConfig{
			Name:      "api",
			KeyPrefix: models.PrefixAPI,
			Window:    15 * time.Minute,
			Max:       1000,
		},
		Auth: LimiterConfig{
			Name:           "auth",
			KeyPrefix:      models.PrefixAuth,
			Window:         15 * time.Minute,
			Max:            10,
			SkipSuccessful: true,
		},
		PasswordReset: LimiterConfig{
			Name:      "password_reset",
			KeyPrefix: models.PrefixPasswordReset,
			Window:    time.Hour,
			Max:       3,
		},
		Registration: LimiterConfig{
			Name:      "registration",
			KeyPrefix: models.PrefixRegistration,
			Window:    time.Hour,
			Max:       5,
		},
		Lockout: LockoutConfig{
			MaxAttempts:     5,
			LockoutDuration: 30 * time.Minute,
			RecordTTL:       24 * time.Hour,
			SweepInterval:   5 * time.Minute,
		},
	}
}
