// Package cleanup runs the periodic sweep of expired lockout records.
//
// The sweep only serves the in-process fallback store; the shared backend
// expires records via TTL. Lock correctness never depends on this worker,
// reads already treat expired locks as absent. The sweep just keeps the
// fallback map from accumulating dead entries.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"uplift/internal/ratelimit/metrics"
)

// Result describes one sweep run.
type Result struct {
	Removed  int
	Duration time.Duration
}

// Sweeper removes expired lockout records and reports how many went.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

type Worker struct {
	store    Sweeper
	logger   *slog.Logger
	interval time.Duration
	metrics  *metrics.Metrics
}

func New(store Sweeper, opts ...Option) *Worker {
	w := &Worker{
		store:    store,
		logger:   slog.Default(),
		interval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start runs the sweep loop until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			startTime := time.Now()
			res, err := w.RunOnce(ctx)
			duration := time.Since(startTime)

			if err != nil {
				w.logger.Error("lockout_cleanup_failed",
					"error", err,
					"duration_ms", duration.Milliseconds(),
				)
				if w.metrics != nil {
					w.metrics.CleanupRunsTotal.WithLabelValues("error").Inc()
					w.metrics.CleanupDurationSeconds.Observe(duration.Seconds())
				}
				continue
			}

			w.logger.Info("lockout_cleanup_completed",
				"removed", res.Removed,
				"duration_ms", duration.Milliseconds(),
			)
			if w.metrics != nil {
				w.metrics.CleanupRemovedTotal.Add(float64(res.Removed))
				w.metrics.CleanupRunsTotal.WithLabelValues("success").Inc()
				w.metrics.CleanupDurationSeconds.Observe(duration.Seconds())
			}

		case <-ctx.Done():
			w.logger.Info("lockout cleanup worker stopping", "reason", ctx.Err())
			return ctx.Err()
		}
	}
}

// RunOnce performs a single sweep. Exposed for tests and manual runs.
func (w *Worker) RunOnce(ctx context.Context) (*Result, error) {
	startTime := time.Now()
	removed, err := w.store.SweepExpired(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{
		Removed:  removed,
		Duration: time.Since(startTime),
	}, nil
}
