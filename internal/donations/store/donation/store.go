// Package donation stores donation payment state.
package donation

import (
	"context"

	"uplift/internal/donations/models"
)

// Store is the donation collaborator the webhook processor writes through.
// At-most-once application is guaranteed upstream by the receipt ledger,
// not here; UpdatePaymentStatus is a plain overwrite.
type Store interface {
	Get(ctx context.Context, id string) (*models.Donation, error)
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error
}
