// Package models defines the donation types the webhook pipeline updates.
package models

import "time"

// PaymentStatus is the payment lifecycle of a donation.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Donation is the slice of the donation record the payment pipeline touches.
type Donation struct {
	ID            string
	AmountCents   int64
	PaymentStatus PaymentStatus
	UpdatedAt     time.Time
}
