// Package models defines vocabulary types for payment webhook intake.
package models

import (
	"encoding/json"
	"time"
)

// Event is a verified webhook event from a payment provider. Data carries
// the provider payload untouched; the processor only reads the fields it
// dispatches on.
type Event struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Created time.Time       `json:"created"`
	Data    json.RawMessage `json:"data"`
}

// ProcessingStatus tracks a receipt through its lifecycle. A receipt is
// inserted as received and moves exactly once to processed or failed.
type ProcessingStatus string

const (
	StatusReceived  ProcessingStatus = "received"
	StatusProcessed ProcessingStatus = "processed"
	StatusFailed    ProcessingStatus = "failed"
)

// Receipt is one row of the idempotency ledger. (Provider, EventID) is
// unique; duplicates never get a second row.
type Receipt struct {
	ID               string
	Provider         string
	EventID          string
	EventType        string
	ProcessingStatus ProcessingStatus
	ErrorMessage     string
	ReceivedAt       time.Time
	ProcessedAt      *time.Time
}

// Result is what the processor reports back to the handler. Received is
// true for every verified event; the other flags describe what actually
// happened to it.
type Result struct {
	Received        bool `json:"received"`
	Duplicate       bool `json:"duplicate,omitempty"`
	Rejected        bool `json:"rejected,omitempty"`
	ProcessingError bool `json:"processing_error,omitempty"`
}

// Provider event types the processor dispatches on.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventChargeRefunded   = "charge.refunded"
)
