package donation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"uplift/internal/donations/models"
	"uplift/internal/sentinel"
)

// PostgresStore persists donations in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed donation store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Donation, error) {
	query := `
		SELECT id, amount_cents, payment_status, updated_at
		FROM donations
		WHERE id = $1
	`
	var d models.Donation
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID,
		&d.AmountCents,
		&d.PaymentStatus,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get donation: %w", err)
	}
	return &d, nil
}

func (s *PostgresStore) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	query := `
		UPDATE donations
		SET payment_status = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("update donation payment status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update donation payment status: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
