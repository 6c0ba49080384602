package audit

import "context"

// Store persists audit events append-only. Implementations must never mutate
// or delete previously appended events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
