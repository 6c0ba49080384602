package receipt

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"uplift/internal/sentinel"
	"uplift/internal/webhook/models"
	"uplift/pkg/platform/middleware/requesttime"
)

// MemoryStore is an in-process receipt ledger for tests. Unlike the counter
// and lockout stores it is NOT a production fallback; the ledger must be
// durable and shared, so production always runs on PostgreSQL.
type MemoryStore struct {
	mu       sync.Mutex
	receipts map[string]*models.Receipt
}

func NewMemory() *MemoryStore {
	return &MemoryStore{receipts: make(map[string]*models.Receipt)}
}

func ledgerKey(provider, eventID string) string {
	return provider + ":" + eventID
}

func (s *MemoryStore) InsertIfAbsent(ctx context.Context, provider, eventID, eventType string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ledgerKey(provider, eventID)
	if _, ok := s.receipts[key]; ok {
		return false, nil
	}
	s.receipts[key] = &models.Receipt{
		ID:               uuid.NewString(),
		Provider:         provider,
		EventID:          eventID,
		EventType:        eventType,
		ProcessingStatus: models.StatusReceived,
		ReceivedAt:       requesttime.Now(ctx),
	}
	return true, nil
}

func (s *MemoryStore) MarkProcessed(ctx context.Context, provider, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.receipts[ledgerKey(provider, eventID)]
	if !ok {
		return sentinel.ErrNotFound
	}
	now := requesttime.Now(ctx)
	r.ProcessingStatus = models.StatusProcessed
	r.ProcessedAt = &now
	return nil
}

func (s *MemoryStore) MarkFailed(_ context.Context, provider, eventID, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.receipts[ledgerKey(provider, eventID)]
	if !ok {
		return sentinel.ErrNotFound
	}
	r.ProcessingStatus = models.StatusFailed
	r.ErrorMessage = truncateError(errMsg)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, provider, eventID string) (*models.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.receipts[ledgerKey(provider, eventID)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

// Len reports the number of ledger rows, for tests.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.receipts)
}
