package receipt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"uplift/internal/sentinel"
	"uplift/internal/webhook/models"
	"uplift/pkg/platform/middleware/requesttime"
)

// pgUndefinedTable is the PostgreSQL error code for a missing relation.
const pgUndefinedTable = "42P01"

// PostgresStore persists webhook receipts in PostgreSQL.
//
// If the receipts table does not exist yet (fresh environment, migration
// not applied), InsertIfAbsent degrades to never-duplicate: the event is
// treated as first delivery so payment processing keeps working, at the
// cost of duplicate protection until the migration lands.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgres constructs a PostgreSQL-backed receipt store.
func NewPostgres(db *sql.DB, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{db: db, logger: logger}
}

func (s *PostgresStore) InsertIfAbsent(ctx context.Context, provider, eventID, eventType string) (bool, error) {
	query := `
		INSERT INTO webhook_receipts (id, provider, event_id, event_type, processing_status, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (provider, event_id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.NewString(),
		provider,
		eventID,
		eventType,
		string(models.StatusReceived),
		requesttime.Now(ctx),
	)
	if err != nil {
		if isUndefinedTable(err) {
			s.logger.WarnContext(ctx, "webhook_receipts table missing, duplicate protection disabled",
				"provider", provider, "event_id", eventID)
			return true, nil
		}
		return false, fmt.Errorf("insert webhook receipt: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert webhook receipt: %w", err)
	}
	return affected == 1, nil
}

func (s *PostgresStore) MarkProcessed(ctx context.Context, provider, eventID string) error {
	query := `
		UPDATE webhook_receipts
		SET processing_status = $3, processed_at = $4
		WHERE provider = $1 AND event_id = $2
	`
	if _, err := s.db.ExecContext(ctx, query,
		provider, eventID, string(models.StatusProcessed), requesttime.Now(ctx),
	); err != nil {
		if isUndefinedTable(err) {
			return nil
		}
		return fmt.Errorf("mark webhook receipt processed: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkFailed(ctx context.Context, provider, eventID, errMsg string) error {
	query := `
		UPDATE webhook_receipts
		SET processing_status = $3, error_message = $4
		WHERE provider = $1 AND event_id = $2
	`
	if _, err := s.db.ExecContext(ctx, query,
		provider, eventID, string(models.StatusFailed), truncateError(errMsg),
	); err != nil {
		if isUndefinedTable(err) {
			return nil
		}
		return fmt.Errorf("mark webhook receipt failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, provider, eventID string) (*models.Receipt, error) {
	query := `
		SELECT id, provider, event_id, event_type, processing_status,
		       COALESCE(error_message, ''), received_at, processed_at
		FROM webhook_receipts
		WHERE provider = $1 AND event_id = $2
	`
	var r models.Receipt
	err := s.db.QueryRowContext(ctx, query, provider, eventID).Scan(
		&r.ID,
		&r.Provider,
		&r.EventID,
		&r.EventType,
		&r.ProcessingStatus,
		&r.ErrorMessage,
		&r.ReceivedAt,
		&r.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get webhook receipt: %w", err)
	}
	return &r, nil
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}
