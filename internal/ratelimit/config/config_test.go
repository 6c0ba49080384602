package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5, cfg.Lockout.MaxAttempts)
	assert.Equal(t, 30*time.Minute, cfg.Lockout.LockoutDuration)
	assert.True(t, cfg.Auth.SkipSuccessful, "auth limiter refunds successes")
	assert.False(t, cfg.API.SkipSuccessful)
	assert.Len(t, cfg.Limiters(), 4)

	// Prefixes must be pairwise distinct so uses cannot collide in the
	// shared keyspace.
	seen := map[string]bool{}
	for _, lc := range cfg.Limiters() {
		assert.False(t, seen[lc.KeyPrefix], "duplicate prefix %s", lc.KeyPrefix)
		seen[lc.KeyPrefix] = true
	}
}

func TestEffectiveMax(t *testing.T) {
	lc := LimiterConfig{Max: 10}

	assert.Equal(t, 10, lc.EffectiveMax(false))
	assert.Equal(t, disabledMax, lc.EffectiveMax(true))
	assert.Greater(t, lc.EffectiveMax(true), 1_000_000, "disabled mode is a practical no-op")
}
