package receipt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uplift/internal/webhook/models"
	requesttime "uplift/pkg/platform/middleware/requesttime"
)

func TestMemoryStore_InsertIfAbsent(t *testing.T) {
	store := NewMemory()
	ctx := requesttime.WithTime(context.Background(), time.Now())

	inserted, err := store.InsertIfAbsent(ctx, "stripe", "evt-1", models.EventPaymentSucceeded)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.InsertIfAbsent(ctx, "stripe", "evt-1", models.EventPaymentSucceeded)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_ProviderScopesEventIDs(t *testing.T) {
	store := NewMemory()
	ctx := requesttime.WithTime(context.Background(), time.Now())

	inserted, err := store.InsertIfAbsent(ctx, "stripe", "evt-1", "t")
	require.NoError(t, err)
	require.True(t, inserted)

	// Same event id from another provider is a distinct row.
	inserted, err = store.InsertIfAbsent(ctx, "paypal", "evt-1", "t")
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestMemoryStore_StatusTransitions(t *testing.T) {
	store := NewMemory()
	now := time.Now()
	ctx := requesttime.WithTime(context.Background(), now)

	_, err := store.InsertIfAbsent(ctx, "stripe", "evt-1", "t")
	require.NoError(t, err)

	require.NoError(t, store.MarkProcessed(ctx, "stripe", "evt-1"))
	r, err := store.Get(ctx, "stripe", "evt-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessed, r.ProcessingStatus)
	require.NotNil(t, r.ProcessedAt)
	assert.Equal(t, now, *r.ProcessedAt)
}

func TestMemoryStore_MarkFailedTruncates(t *testing.T) {
	store := NewMemory()
	ctx := requesttime.WithTime(context.Background(), time.Now())
	_, err := store.InsertIfAbsent(ctx, "stripe", "evt-1", "t")
	require.NoError(t, err)

	require.NoError(t, store.MarkFailed(ctx, "stripe", "evt-1", strings.Repeat("e", 1500)))
	r, err := store.Get(ctx, "stripe", "evt-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, r.ProcessingStatus)
	assert.Len(t, r.ErrorMessage, 1000)
}

func TestIsUndefinedTable(t *testing.T) {
	assert.True(t, isUndefinedTable(&pgconn.PgError{Code: "42P01"}))
	assert.False(t, isUndefinedTable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUndefinedTable(context.DeadlineExceeded))
}
