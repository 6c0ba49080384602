package models

import "time"

// RateLimitExceededResponse is the 429 body for over-budget clients.
type RateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"` // seconds
}

// LockoutResponse is the deny body for locked identifiers. Callers get a
// concrete wait time, never a generic failure.
type LockoutResponse struct {
	Error            string    `json:"error"`
	Message          string    `json:"message"`
	MinutesRemaining int       `json:"minutes_remaining"`
	LockedUntil      time.Time `json:"locked_until"`
}
