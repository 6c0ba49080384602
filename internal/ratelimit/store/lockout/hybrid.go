package lockout

import (
	"context"
	"log/slog"
	"time"

	"uplift/internal/ratelimit/models"
	"uplift/internal/ratelimit/store/counter"
)

// HybridStore prefers the shared backend and falls back to process memory,
// evaluating readiness on every call exactly like the counter store.
type HybridStore struct {
	shared Store
	local  Store
	ready  counter.ReadyFunc
	logger *slog.Logger
}

// NewHybrid builds the hybrid lockout store. A nil ready func or nil shared
// store pins the hybrid to the local backend.
func NewHybrid(shared, local Store, ready counter.ReadyFunc, logger *slog.Logger) *HybridStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &HybridStore{shared: shared, local: local, ready: ready, logger: logger}
}

func (h *HybridStore) useShared(ctx context.Context) bool {
	return h.shared != nil && h.ready != nil && h.ready(ctx)
}

func (h *HybridStore) Get(ctx context.Context, key string) (*models.LoginAttempt, error) {
	if h.useShared(ctx) {
		record, err := h.shared.Get(ctx, key)
		if err == nil {
			return record, nil
		}
		h.logger.WarnContext(ctx, "shared lockout get failed, falling back to local",
			"key", key, "error", err)
	}
	return h.local.Get(ctx, key)
}

func (h *HybridStore) Put(ctx context.Context, key string, record *models.LoginAttempt, ttl time.Duration) error {
	if h.useShared(ctx) {
		err := h.shared.Put(ctx, key, record, ttl)
		if err == nil {
			return nil
		}
		h.logger.WarnContext(ctx, "shared lockout put failed, falling back to local",
			"key", key, "error", err)
	}
	return h.local.Put(ctx, key, record, ttl)
}

func (h *HybridStore) Delete(ctx context.Context, key string) error {
	// Delete clears both backends: a success that lands after the cache
	// recovers must still clear any record written to local during the outage.
	var sharedErr error
	if h.useShared(ctx) {
		sharedErr = h.shared.Delete(ctx, key)
	}
	if err := h.local.Delete(ctx, key); err != nil {
		return err
	}
	return sharedErr
}
