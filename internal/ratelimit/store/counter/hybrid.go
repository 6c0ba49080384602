package counter

import (
	"context"
	"log/slog"

	"uplift/internal/ratelimit/models"
)

// ReadyFunc reports whether the shared backend is currently usable. It is
// consulted on every call, never cached, so recovery of the shared cache is
// picked up on the very next operation.
type ReadyFunc func(ctx context.Context) bool

// HybridStore prefers the shared backend and falls back to the in-process
// one when the shared cache reports itself unavailable, or when a shared
// operation fails mid-call.
type HybridStore struct {
	shared Store
	local  Store
	ready  ReadyFunc
	logger *slog.Logger
}

// NewHybrid builds the hybrid counter store. A nil ready func or nil shared
// store pins the hybrid to the local backend.
func NewHybrid(shared, local Store, ready ReadyFunc, logger *slog.Logger) *HybridStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &HybridStore{shared: shared, local: local, ready: ready, logger: logger}
}

func (h *HybridStore) useShared(ctx context.Context) bool {
	return h.shared != nil && h.ready != nil && h.ready(ctx)
}

func (h *HybridStore) Increment(ctx context.Context, key string) (*models.CounterResult, error) {
	if h.useShared(ctx) {
		res, err := h.shared.Increment(ctx, key)
		if err == nil {
			return res, nil
		}
		h.logger.WarnContext(ctx, "shared counter increment failed, falling back to local",
			"key", key, "error", err)
	}
	return h.local.Increment(ctx, key)
}

func (h *HybridStore) Decrement(ctx context.Context, key string) error {
	if h.useShared(ctx) {
		err := h.shared.Decrement(ctx, key)
		if err == nil {
			return nil
		}
		h.logger.WarnContext(ctx, "shared counter decrement failed, falling back to local",
			"key", key, "error", err)
	}
	return h.local.Decrement(ctx, key)
}

func (h *HybridStore) Reset(ctx context.Context, key string) error {
	// Reset clears both backends so a manual reset holds regardless of which
	// backend served the counted hits.
	var sharedErr error
	if h.useShared(ctx) {
		sharedErr = h.shared.Reset(ctx, key)
	}
	if err := h.local.Reset(ctx, key); err != nil {
		return err
	}
	return sharedErr
}
