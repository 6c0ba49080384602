package counter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	requesttime "uplift/pkg/platform/middleware/requesttime"
)

func TestMemoryStore_WindowCorrectness(t *testing.T) {
	store := NewMemory(time.Minute)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ctx := requesttime.WithTime(context.Background(), base)

	// n increments within the window count to n.
	for i := 1; i <= 5; i++ {
		res, err := store.Increment(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, i, res.TotalHits)
		assert.Equal(t, base.Add(time.Minute), res.ResetAt, "later hits never extend the window")
	}

	// An increment inside the window, later than the first, still reports the
	// original reset time.
	later := requesttime.WithTime(context.Background(), base.Add(30*time.Second))
	res, err := store.Increment(later, "k")
	require.NoError(t, err)
	assert.Equal(t, 6, res.TotalHits)
	assert.Equal(t, base.Add(time.Minute), res.ResetAt)

	// A call after the reset time starts a fresh window with one hit.
	after := requesttime.WithTime(context.Background(), base.Add(time.Minute))
	res, err = store.Increment(after, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalHits)
	assert.Equal(t, base.Add(2*time.Minute), res.ResetAt)
}

func TestMemoryStore_Decrement(t *testing.T) {
	store := NewMemory(time.Minute)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ctx := requesttime.WithTime(context.Background(), base)

	_, err := store.Increment(ctx, "k")
	require.NoError(t, err)
	_, err = store.Increment(ctx, "k")
	require.NoError(t, err)

	require.NoError(t, store.Decrement(ctx, "k"))

	res, err := store.Increment(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalHits)

	t.Run("never goes negative", func(t *testing.T) {
		require.NoError(t, store.Decrement(ctx, "absent"))
		require.NoError(t, store.Decrement(ctx, "k"))
		require.NoError(t, store.Decrement(ctx, "k"))
		require.NoError(t, store.Decrement(ctx, "k"))

		res, err := store.Increment(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, 1, res.TotalHits)
	})
}

func TestMemoryStore_Reset(t *testing.T) {
	store := NewMemory(time.Minute)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ctx := requesttime.WithTime(context.Background(), base)

	for i := 0; i < 3; i++ {
		_, err := store.Increment(ctx, "k")
		require.NoError(t, err)
	}
	require.NoError(t, store.Reset(ctx, "k"))

	res, err := store.Increment(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalHits)
}

func TestMemoryStore_IndependentKeys(t *testing.T) {
	store := NewMemory(time.Minute)
	ctx := requesttime.WithTime(context.Background(), time.Now())

	_, err := store.Increment(ctx, "a")
	require.NoError(t, err)
	res, err := store.Increment(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalHits)
}

func TestMemoryStore_ConcurrentIncrements(t *testing.T) {
	store := NewMemory(time.Minute)
	ctx := context.Background()

	const workers = 32
	done := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, _ = store.Increment(ctx, "shared")
		}()
	}
	for i := 0; i < workers; i++ {
		<-done
	}

	res, err := store.Increment(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, workers+1, res.TotalHits)
}
