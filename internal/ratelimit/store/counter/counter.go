// Package counter implements the windowed counter store behind request rate
// limiting. The shared Redis backend carries cross-process correctness; the
// in-process backend keeps limits enforceable (per process) when the shared
// cache is unreachable.
package counter

import (
	"context"

	"uplift/internal/ratelimit/models"
)

// Store is a windowed counter keyed by string, parameterized by a fixed
// window at construction time.
//
// Increment is the only operation that may create a new window; the first
// increment in a window sets its expiry, and later increments never extend
// it. The returned ResetAt always reflects the TTL actually remaining on the
// underlying key.
type Store interface {
	Increment(ctx context.Context, key string) (*models.CounterResult, error)

	// Decrement refunds one hit, used by limiters that exclude successful
	// requests from the count. It never creates a window.
	Decrement(ctx context.Context, key string) error

	// Reset clears the counter for a key.
	Reset(ctx context.Context, key string) error
}
