package audit

import "time"

// Event is emitted from domain logic to capture security-relevant actions.
// Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	Subject   string // identifier the event is about (email, event id, donation id)
	Action    string
	Detail    string // free-form context (attempt counts, unlock times, error summaries)
	RequestID string
}

const (
	ActionLoginFailure     = "login_failure"
	ActionAccountLocked    = "account_locked"
	ActionLoginSuccess     = "login_success"
	ActionLockoutExpired   = "lockout_expired"
	ActionWebhookReceived  = "webhook_received"
	ActionWebhookProcessed = "webhook_processed"
	ActionWebhookFailed    = "webhook_failed"
)
