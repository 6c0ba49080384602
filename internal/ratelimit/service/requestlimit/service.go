// Package requestlimit enforces fixed-window request limits per client.
//
// Each Limiter owns one endpoint class (general API, auth, password reset,
// registration) and one counter store. Middleware asks Allow before handling
// a request; limiters configured with SkipSuccessful refund the hit via
// RecordSuccess after the guarded operation succeeds.
//
// Usage:
//
//	limiter, _ := requestlimit.New(store, cfg.Auth)
//	result, _ := limiter.Allow(ctx, clientIP)
//	if !result.Allowed {
//	    // Return 429 Too Many Requests
//	}
package requestlimit

import (
	"context"
	"errors"
	"log/slog"

	"uplift/internal/platform/privacy"
	"uplift/internal/ratelimit/config"
	"uplift/internal/ratelimit/metrics"
	"uplift/internal/ratelimit/models"
	"uplift/internal/ratelimit/store/counter"
	dErrors "uplift/pkg/domain-errors"
	"uplift/pkg/platform/middleware/requesttime"
)

// Limiter enforces one fixed-window limit against a counter store.
// Thread-safe for concurrent use by HTTP middleware.
type Limiter struct {
	store    counter.Store
	cfg      config.LimiterConfig
	disabled bool
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Limiter instance.
type Option func(*Limiter)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

// WithMetrics sets the metrics recorder for observability.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// WithDisabled turns enforcement off. The limiter still counts hits so that
// headers stay truthful, but Allow never denies.
func WithDisabled(disabled bool) Option {
	return func(l *Limiter) {
		l.disabled = disabled
	}
}

// New creates a limiter for one endpoint class.
// Returns an error if the counter store is nil.
func New(store counter.Store, cfg config.LimiterConfig, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("counter store is required")
	}

	l := &Limiter{
		store:  store,
		cfg:    cfg,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// Name reports the limiter's endpoint class name, used for logging,
// metrics labels, and middleware diagnostics.
func (l *Limiter) Name() string {
	return l.cfg.Name
}

// SkipSuccessful reports whether successful operations refund their hit.
func (l *Limiter) SkipSuccessful() bool {
	return l.cfg.SkipSuccessful
}

// Allow counts one hit for clientKey and reports whether the request may
// proceed. The result always carries Limit, Remaining and ResetAt so callers
// can emit rate limit headers on every response, allowed or not.
func (l *Limiter) Allow(ctx context.Context, clientKey string) (*models.RateLimitResult, error) {
	key := models.CounterKey(l.cfg.KeyPrefix, clientKey)
	count, err := l.store.Increment(ctx, key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to increment rate limit counter")
	}

	max := l.cfg.EffectiveMax(l.disabled)
	if l.metrics != nil {
		l.metrics.IncrementChecked(l.cfg.Name)
	}

	remaining := max - count.TotalHits
	if remaining < 0 {
		remaining = 0
	}

	result := &models.RateLimitResult{
		Allowed:   count.TotalHits <= max,
		Limit:     max,
		Remaining: remaining,
		ResetAt:   count.ResetAt,
	}

	if !result.Allowed {
		now := requesttime.Now(ctx)
		retryAfter := int(count.ResetAt.Sub(now).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		result.RetryAfter = retryAfter

		if l.metrics != nil {
			l.metrics.IncrementDenied(l.cfg.Name)
		}
		l.logger.WarnContext(ctx, "rate limit exceeded",
			"limiter", l.cfg.Name,
			"client_key", privacy.AnonymizeClientKey(clientKey),
			"hits", count.TotalHits,
			"limit", max,
		)
	}

	return result, nil
}

// RecordSuccess refunds the hit consumed by Allow when the limiter is
// configured to skip successful operations. No-op otherwise.
func (l *Limiter) RecordSuccess(ctx context.Context, clientKey string) error {
	if !l.cfg.SkipSuccessful {
		return nil
	}
	key := models.CounterKey(l.cfg.KeyPrefix, clientKey)
	if err := l.store.Decrement(ctx, key); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to refund rate limit counter")
	}
	return nil
}

// Reset clears the counter for clientKey, restoring a full quota.
func (l *Limiter) Reset(ctx context.Context, clientKey string) error {
	key := models.CounterKey(l.cfg.KeyPrefix, clientKey)
	if err := l.store.Reset(ctx, key); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset rate limit counter")
	}
	return nil
}
