package counter

import (
	"context"
	"sync"
	"time"

	"uplift/internal/ratelimit/models"
	requesttime "uplift/pkg/platform/middleware/requesttime"
)

type window struct {
	hits    int
	resetAt time.Time
}

// MemoryStore is the in-process fallback counter. Correctness is scoped to a
// single process: under fallback, limits are enforced per process rather than
// cluster-wide, which is a documented degradation rather than a bug.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	window  time.Duration
}

// NewMemory creates an in-process counter store with the given window.
func NewMemory(windowDuration time.Duration) *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		window:  windowDuration,
	}
}

func (s *MemoryStore) Increment(ctx context.Context, key string) (*models.CounterResult, error) {
	now := requesttime.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		// Expired entries are treated as absent (lazy expiry).
		w = &window{resetAt: now.Add(s.window)}
		s.windows[key] = w
	}
	w.hits++

	return &models.CounterResult{TotalHits: w.hits, ResetAt: w.resetAt}, nil
}

func (s *MemoryStore) Decrement(ctx context.Context, key string) error {
	now := requesttime.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		return nil
	}
	if w.hits > 0 {
		w.hits--
	}
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
	return nil
}
