package models

import (
	"time"

	dErrors "uplift/pkg/domain-errors"
)

// CounterResult is what a counter store returns for a single increment:
// the hit count observed in the current window and when that window resets.
type CounterResult struct {
	TotalHits int
	ResetAt   time.Time
}

// RateLimitResult is the decision handed to the transport layer.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// LoginAttempt tracks consecutive authentication failures for one identifier.
// Attempts counts failures since the last success or lock expiry; LockedUntil
// is non-nil exactly while the identifier is locked.
type LoginAttempt struct {
	Identifier  string     `json:"identifier"`
	UserID      string     `json:"user_id,omitempty"` // best-effort association to a known account
	Attempts    int        `json:"attempts"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
}

// NewLoginAttempt creates a record for the first failure of an identifier.
func NewLoginAttempt(identifier, userID string) (*LoginAttempt, error) {
	if identifier == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "identifier cannot be empty")
	}
	return &LoginAttempt{
		Identifier: identifier,
		UserID:     userID,
		Attempts:   1,
	}, nil
}

// IsLocked reports whether the record is locked at the given instant.
func (a *LoginAttempt) IsLocked(now time.Time) bool {
	if a == nil || a.LockedUntil == nil {
		return false
	}
	return now.Before(*a.LockedUntil)
}

// LockExpired reports whether the record carried a lock that has since passed.
// An expired lock is treated the same as an absent record (lazy expiry).
func (a *LoginAttempt) LockExpired(now time.Time) bool {
	if a == nil || a.LockedUntil == nil {
		return false
	}
	return !now.Before(*a.LockedUntil)
}

// LockStatus is derived from a single fetch of a LoginAttempt so that the
// locked flag and the remaining duration can never disagree.
type LockStatus struct {
	Locked      bool
	Attempts    int
	LockedUntil time.Time     // zero unless Locked
	Remaining   time.Duration // zero unless Locked
}

// MinutesRemaining rounds the remaining lock duration up to whole minutes for
// user-facing messaging. A locked status always reports at least one minute.
func (s *LockStatus) MinutesRemaining() int {
	if !s.Locked {
		return 0
	}
	minutes := int((s.Remaining + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
