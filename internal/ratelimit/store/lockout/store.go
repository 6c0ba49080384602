// Package lockout implements storage for login-attempt records with the same
// shared-or-local duality as the counter store. Records live as hash fields
// with a TTL in the shared cache, or as map entries in process memory.
package lockout

import (
	"context"
	"time"

	"uplift/internal/ratelimit/models"
)

// Store persists login-attempt records keyed by the lowercased identifier key
// (see models.LockoutKey). A nil record return with nil error means "no
// record"; implementations treat expired records as absent.
type Store interface {
	Get(ctx context.Context, key string) (*models.LoginAttempt, error)

	// Put upserts a record with the given TTL. The TTL bounds how long the
	// backend retains the record; lock expiry itself is enforced lazily at
	// read time by the service.
	Put(ctx context.Context, key string, record *models.LoginAttempt, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
}
