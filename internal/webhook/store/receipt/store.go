// Package receipt is the idempotency ledger for webhook events.
package receipt

import (
	"context"

	"uplift/internal/webhook/models"
)

// Store records webhook receipts. InsertIfAbsent is the idempotency gate:
// it reports whether this delivery was the first for (provider, eventID).
type Store interface {
	InsertIfAbsent(ctx context.Context, provider, eventID, eventType string) (inserted bool, err error)
	MarkProcessed(ctx context.Context, provider, eventID string) error
	MarkFailed(ctx context.Context, provider, eventID, errMsg string) error
	Get(ctx context.Context, provider, eventID string) (*models.Receipt, error)
}

// maxErrorLength bounds stored dispatch error messages.
const maxErrorLength = 1000

func truncateError(msg string) string {
	if len(msg) > maxErrorLength {
		return msg[:maxErrorLength]
	}
	return msg
}
