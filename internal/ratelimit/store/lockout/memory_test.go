package lockout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uplift/internal/ratelimit/models"
	requesttime "uplift/pkg/platform/middleware/requesttime"
)

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemory()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ctx := requesttime.WithTime(context.Background(), base)

	record := &models.LoginAttempt{Identifier: "lockout:a@b.org", Attempts: 2}
	require.NoError(t, store.Put(ctx, "lockout:a@b.org", record, time.Hour))

	got, err := store.Get(ctx, "lockout:a@b.org")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Attempts)

	t.Run("returned record is a copy", func(t *testing.T) {
		got.Attempts = 99
		again, err := store.Get(ctx, "lockout:a@b.org")
		require.NoError(t, err)
		assert.Equal(t, 2, again.Attempts)
	})

	t.Run("missing key returns nil record", func(t *testing.T) {
		got, err := store.Get(ctx, "lockout:missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestMemoryStore_TTLExpiryIsLazy(t *testing.T) {
	store := NewMemory()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ctx := requesttime.WithTime(context.Background(), base)

	record := &models.LoginAttempt{Identifier: "lockout:a@b.org", Attempts: 1}
	require.NoError(t, store.Put(ctx, "lockout:a@b.org", record, time.Hour))

	justBefore := requesttime.WithTime(context.Background(), base.Add(time.Hour-time.Millisecond))
	got, err := store.Get(justBefore, "lockout:a@b.org")
	require.NoError(t, err)
	assert.NotNil(t, got)

	atExpiry := requesttime.WithTime(context.Background(), base.Add(time.Hour))
	got, err = store.Get(atExpiry, "lockout:a@b.org")
	require.NoError(t, err)
	assert.Nil(t, got, "expired entry reads as absent")
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemory()
	ctx := requesttime.WithTime(context.Background(), time.Now())

	record := &models.LoginAttempt{Identifier: "lockout:a@b.org", Attempts: 1}
	require.NoError(t, store.Put(ctx, "lockout:a@b.org", record, time.Hour))
	require.NoError(t, store.Delete(ctx, "lockout:a@b.org"))

	got, err := store.Get(ctx, "lockout:a@b.org")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_SweepExpired(t *testing.T) {
	store := NewMemory()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ctx := requesttime.WithTime(context.Background(), base)

	lockedPast := base.Add(-time.Minute)
	lockedFuture := base.Add(time.Hour)

	require.NoError(t, store.Put(ctx, "lockout:expired-lock", &models.LoginAttempt{
		Identifier: "lockout:expired-lock", Attempts: 5, LockedUntil: &lockedPast,
	}, 24*time.Hour))
	require.NoError(t, store.Put(ctx, "lockout:active-lock", &models.LoginAttempt{
		Identifier: "lockout:active-lock", Attempts: 5, LockedUntil: &lockedFuture,
	}, 24*time.Hour))
	require.NoError(t, store.Put(ctx, "lockout:tracking", &models.LoginAttempt{
		Identifier: "lockout:tracking", Attempts: 2,
	}, 24*time.Hour))

	removed, err := store.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, store.Len())

	got, err := store.Get(ctx, "lockout:expired-lock")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.Get(ctx, "lockout:active-lock")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
