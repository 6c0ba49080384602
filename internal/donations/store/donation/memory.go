package donation

import (
	"context"
	"sync"

	"uplift/internal/donations/models"
	"uplift/internal/sentinel"
)

// MemoryStore is an in-process donation store for tests.
type MemoryStore struct {
	mu        sync.RWMutex
	donations map[string]*models.Donation
}

func NewMemory() *MemoryStore {
	return &MemoryStore{donations: make(map[string]*models.Donation)}
}

// Seed inserts a donation, overwriting any existing record.
func (s *MemoryStore) Seed(d *models.Donation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *d
	s.donations[d.ID] = &copied
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.donations[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (s *MemoryStore) UpdatePaymentStatus(_ context.Context, id string, status models.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	d.PaymentStatus = status
	return nil
}
