// Package lockout tracks failed login attempts and locks identifiers that
// cross the failure threshold.
//
// State lives in the lockout store keyed by normalized identifier. A record
// with no LockedUntil is tracking mode; crossing the threshold stamps
// LockedUntil in the same RecordFailure call. Expired locks are treated as
// absent on read, so correctness never depends on the background sweep.
package lockout

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"uplift/internal/ratelimit/config"
	"uplift/internal/ratelimit/metrics"
	"uplift/internal/ratelimit/models"
	"uplift/internal/ratelimit/store/lockout"
	dErrors "uplift/pkg/domain-errors"
	"uplift/pkg/platform/audit"
	"uplift/pkg/platform/middleware/requesttime"
)

// Service is the account lockout tracker. Thread-safe.
type Service struct {
	store   lockout.Store
	cfg     *config.LockoutConfig
	logger  *slog.Logger
	audit   *audit.Logger
	metrics *metrics.Metrics
}

// Option configures a Service instance.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithAuditLogger sets the audit logger for security events.
func WithAuditLogger(a *audit.Logger) Option {
	return func(s *Service) {
		s.audit = a
	}
}

// WithConfig overrides the default lockout thresholds.
func WithConfig(cfg *config.LockoutConfig) Option {
	return func(s *Service) {
		s.cfg = cfg
	}
}

// WithMetrics sets the metrics recorder for observability.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates a lockout tracker backed by the given store.
func New(store lockout.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("lockout store is required")
	}

	defaultCfg := config.DefaultConfig().Lockout
	svc := &Service{
		store:  store,
		cfg:    &defaultCfg,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// Status reports the lock state for identifier with a single store fetch,
// so the locked flag and remaining duration can never disagree. An expired
// lock reads as unlocked and the stale record is removed best-effort.
func (s *Service) Status(ctx context.Context, identifier string) (*models.LockStatus, error) {
	key := models.LockoutKey(identifier)
	now := requesttime.Now(ctx)

	record, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get lockout record")
	}
	if record == nil {
		return &models.LockStatus{}, nil
	}

	if record.LockExpired(now) {
		// Lazy expiry. The sweep would get to it eventually; removing it
		// here keeps the store tidy without blocking the caller.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete expired lockout record",
				"identifier", key, "error", delErr)
		}
		s.logAudit(ctx, key, audit.ActionLockoutExpired, "")
		return &models.LockStatus{}, nil
	}

	return s.status(record, now), nil
}

// RecordFailure counts one failed login for identifier. Crossing the
// threshold locks the identifier in the same call, so there is no window
// where the final failure leaves the account unlocked.
func (s *Service) RecordFailure(ctx context.Context, identifier, userID string) (*models.LockStatus, error) {
	key := models.LockoutKey(identifier)
	now := requesttime.Now(ctx)

	record, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get lockout record")
	}
	if record == nil || record.LockExpired(now) {
		record, err = models.NewLoginAttempt(key, userID)
		if err != nil {
			return nil, err
		}
	} else {
		record.Attempts++
		if userID != "" {
			record.UserID = userID
		}
	}

	ttl := s.cfg.RecordTTL
	locked := false
	if record.Attempts >= s.cfg.MaxAttempts && record.LockedUntil == nil {
		until := now.Add(s.cfg.LockoutDuration)
		record.LockedUntil = &until
		ttl = s.cfg.LockoutDuration
		locked = true
	}

	if err := s.store.Put(ctx, key, record, ttl); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store lockout record")
	}

	if s.metrics != nil {
		s.metrics.IncrementLoginFailures()
	}
	s.logAudit(ctx, key, audit.ActionLoginFailure, "")
	if locked {
		if s.metrics != nil {
			s.metrics.IncrementLockouts()
		}
		s.logger.WarnContext(ctx, "account locked",
			"identifier", key,
			"attempts", record.Attempts,
			"locked_until", record.LockedUntil,
		)
		s.logAudit(ctx, key, audit.ActionAccountLocked, record.LockedUntil.Format(time.RFC3339))
	}

	return s.status(record, now), nil
}

// RecordSuccess clears the failure history for identifier. A successful
// login always resets the tracker, including clearing an active lock when
// the caller has authenticated through another channel.
func (s *Service) RecordSuccess(ctx context.Context, identifier string) error {
	key := models.LockoutKey(identifier)
	if err := s.store.Delete(ctx, key); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear lockout record")
	}
	s.logAudit(ctx, key, audit.ActionLoginSuccess, "")
	return nil
}

// MaxAttempts reports the configured failure threshold.
func (s *Service) MaxAttempts() int {
	return s.cfg.MaxAttempts
}

func (s *Service) status(record *models.LoginAttempt, now time.Time) *models.LockStatus {
	if record.IsLocked(now) {
		return &models.LockStatus{
			Locked:      true,
			Attempts:    record.Attempts,
			LockedUntil: *record.LockedUntil,
			Remaining:   record.LockedUntil.Sub(now),
		}
	}
	return &models.LockStatus{Attempts: record.Attempts}
}

func (s *Service) logAudit(ctx context.Context, subject, action, detail string) {
	if s.audit == nil {
		return
	}
	s.audit.Log(ctx, audit.Event{
		Subject: subject,
		Action:  action,
		Detail:  detail,
	})
}
