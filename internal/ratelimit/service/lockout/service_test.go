package lockout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uplift/internal/ratelimit/models"
	lockoutstore "uplift/internal/ratelimit/store/lockout"
	dErrors "uplift/pkg/domain-errors"
	"uplift/pkg/platform/audit"
	requesttime "uplift/pkg/platform/middleware/requesttime"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) (*models.LoginAttempt, error) {
	return nil, errors.New("backend unavailable")
}
func (failingStore) Put(context.Context, string, *models.LoginAttempt, time.Duration) error {
	return errors.New("backend unavailable")
}
func (failingStore) Delete(context.Context, string) error { return errors.New("backend unavailable") }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testService(t *testing.T) (*Service, *lockoutstore.MemoryStore, *audit.InMemoryStore) {
	t.Helper()
	store := lockoutstore.NewMemory()
	auditStore := audit.NewInMemoryStore()
	svc, err := New(store,
		WithLogger(discardLogger()),
		WithAuditLogger(audit.NewLogger(discardLogger(), auditStore)),
	)
	require.NoError(t, err)
	return svc, store, auditStore
}

func ctxAt(now time.Time) context.Context {
	return requesttime.WithTime(context.Background(), now)
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestService_StatusUnknownIdentifier(t *testing.T) {
	svc, _, _ := testService(t)

	status, err := svc.Status(ctxAt(time.Now()), "user@example.org")
	require.NoError(t, err)
	assert.False(t, status.Locked)
	assert.Zero(t, status.Attempts)
}

func TestService_RecordFailureTracksAttempts(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := ctxAt(time.Now())

	for i := 1; i <= 4; i++ {
		status, err := svc.RecordFailure(ctx, "User@Example.org", "u-1")
		require.NoError(t, err)
		assert.False(t, status.Locked, "attempt %d must not lock", i)
		assert.Equal(t, i, status.Attempts)
	}
}

func TestService_FifthFailureLocksImmediately(t *testing.T) {
	svc, _, auditStore := testService(t)
	now := time.Now()
	ctx := ctxAt(now)

	var status *models.LockStatus
	var err error
	for i := 0; i < 5; i++ {
		status, err = svc.RecordFailure(ctx, "user@example.org", "u-1")
		require.NoError(t, err)
	}

	// The lock lands in the same call as the final failure.
	require.True(t, status.Locked)
	assert.Equal(t, 5, status.Attempts)
	assert.WithinDuration(t, now.Add(30*time.Minute), status.LockedUntil, time.Second)
	assert.Equal(t, 30, status.MinutesRemaining())

	actions := make([]string, 0, len(auditStore.Events()))
	for _, e := range auditStore.Events() {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, audit.ActionAccountLocked)
}

func TestService_StatusWhileLocked(t *testing.T) {
	svc, _, _ := testService(t)
	now := time.Now()
	ctx := ctxAt(now)
	for i := 0; i < 5; i++ {
		_, err := svc.RecordFailure(ctx, "user@example.org", "")
		require.NoError(t, err)
	}

	status, err := svc.Status(ctxAt(now.Add(10*time.Minute)), "user@example.org")
	require.NoError(t, err)
	require.True(t, status.Locked)
	assert.Equal(t, 20*time.Minute, status.Remaining)
	assert.Equal(t, 20, status.MinutesRemaining())
}

func TestService_LockExpiresLazily(t *testing.T) {
	svc, store, _ := testService(t)
	now := time.Now()
	ctx := ctxAt(now)
	for i := 0; i < 5; i++ {
		_, err := svc.RecordFailure(ctx, "user@example.org", "")
		require.NoError(t, err)
	}

	// Just past the lock boundary the identifier reads clean with no sweep.
	status, err := svc.Status(ctxAt(now.Add(30*time.Minute)), "user@example.org")
	require.NoError(t, err)
	assert.False(t, status.Locked)
	assert.Zero(t, status.Attempts)

	// The stale record was removed on read.
	record, err := store.Get(context.Background(), models.LockoutKey("user@example.org"))
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestService_FailureAfterExpiredLockStartsFresh(t *testing.T) {
	svc, _, _ := testService(t)
	now := time.Now()
	ctx := ctxAt(now)
	for i := 0; i < 5; i++ {
		_, err := svc.RecordFailure(ctx, "user@example.org", "")
		require.NoError(t, err)
	}

	status, err := svc.RecordFailure(ctxAt(now.Add(31*time.Minute)), "user@example.org", "")
	require.NoError(t, err)
	assert.False(t, status.Locked)
	assert.Equal(t, 1, status.Attempts)
}

func TestService_RecordSuccessClears(t *testing.T) {
	svc, _, auditStore := testService(t)
	ctx := ctxAt(time.Now())
	for i := 0; i < 3; i++ {
		_, err := svc.RecordFailure(ctx, "user@example.org", "")
		require.NoError(t, err)
	}

	require.NoError(t, svc.RecordSuccess(ctx, "user@example.org"))

	status, err := svc.Status(ctx, "user@example.org")
	require.NoError(t, err)
	assert.Zero(t, status.Attempts)

	actions := make([]string, 0, len(auditStore.Events()))
	for _, e := range auditStore.Events() {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, audit.ActionLoginSuccess)
}

func TestService_RecordSuccessClearsActiveLock(t *testing.T) {
	svc, _, _ := testService(t)
	now := time.Now()
	ctx := ctxAt(now)
	for i := 0; i < 5; i++ {
		_, err := svc.RecordFailure(ctx, "user@example.org", "")
		require.NoError(t, err)
	}

	require.NoError(t, svc.RecordSuccess(ctx, "user@example.org"))

	status, err := svc.Status(ctx, "user@example.org")
	require.NoError(t, err)
	assert.False(t, status.Locked)
}

func TestService_IdentifierNormalized(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := ctxAt(time.Now())

	_, err := svc.RecordFailure(ctx, "  User@Example.ORG ", "")
	require.NoError(t, err)
	status, err := svc.Status(ctx, "user@example.org")
	require.NoError(t, err)
	assert.Equal(t, 1, status.Attempts)
}

func TestService_StoreErrorWrapped(t *testing.T) {
	svc, err := New(failingStore{}, WithLogger(discardLogger()))
	require.NoError(t, err)

	_, err = svc.Status(context.Background(), "user@example.org")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}
