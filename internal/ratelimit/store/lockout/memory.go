package lockout

import (
	"context"
	"sync"
	"time"

	"uplift/internal/ratelimit/models"
	requesttime "uplift/pkg/platform/middleware/requesttime"
)

type memoryEntry struct {
	record    models.LoginAttempt
	expiresAt time.Time
}

// MemoryStore is the in-process fallback for login-attempt records.
// Correctness is per process under fallback, by design.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

func NewMemory() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*models.LoginAttempt, error) {
	now := requesttime.Now(ctx)

	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || !now.Before(entry.expiresAt) {
		return nil, nil
	}
	rec := entry.record // copy so callers cannot mutate stored state
	return &rec, nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, record *models.LoginAttempt, ttl time.Duration) error {
	now := requesttime.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &memoryEntry{record: *record, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// SweepExpired removes entries whose TTL or lock has passed. It exists to
// bound memory growth of the fallback map; lazy expiry at read time is the
// correctness mechanism, so a missed sweep is harmless.
func (s *MemoryStore) SweepExpired(ctx context.Context) (int, error) {
	now := requesttime.Now(ctx)

	// Collect candidate keys first, then re-check each under the write lock,
	// so the sweep stays safe against concurrent Puts.
	s.mu.RLock()
	candidates := make([]string, 0, len(s.entries))
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) || entry.record.LockExpired(now) {
			candidates = append(candidates, key)
		}
	}
	s.mu.RUnlock()

	removed := 0
	s.mu.Lock()
	for _, key := range candidates {
		entry, ok := s.entries[key]
		if !ok {
			continue
		}
		if !now.Before(entry.expiresAt) || entry.record.LockExpired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	s.mu.Unlock()
	return removed, nil
}

// Len reports the number of stored entries, for tests and metrics.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
