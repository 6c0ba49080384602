// Package handler exposes admin endpoints over the lockout tracker, used by
// support staff to inspect and clear lockouts.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"uplift/internal/ratelimit/models"
	dErrors "uplift/pkg/domain-errors"
	"uplift/pkg/platform/httputil"
)

// LockoutService is the slice of the lockout tracker the handler needs.
type LockoutService interface {
	Status(ctx context.Context, identifier string) (*models.LockStatus, error)
	RecordSuccess(ctx context.Context, identifier string) error
}

// Handler serves lockout administration endpoints.
type Handler struct {
	lockouts LockoutService
	logger   *slog.Logger
}

// New creates the lockout admin handler.
func New(lockouts LockoutService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{lockouts: lockouts, logger: logger}
}

// RegisterRoutes mounts the admin endpoints on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/lockouts/{identifier}", h.HandleStatus)
	r.Delete("/admin/lockouts/{identifier}", h.HandleClear)
}

// StatusResponse reports the lock state of one identifier.
type StatusResponse struct {
	Identifier       string `json:"identifier"`
	Locked           bool   `json:"locked"`
	Attempts         int    `json:"attempts"`
	MinutesRemaining int    `json:"minutes_remaining,omitempty"`
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	status, err := h.lockouts.Status(r.Context(), identifier)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &StatusResponse{
		Identifier:       identifier,
		Locked:           status.Locked,
		Attempts:         status.Attempts,
		MinutesRemaining: status.MinutesRemaining(),
	})
}

// HandleClear removes an identifier's failure history, unlocking it
// immediately. Support uses this after verifying the account owner.
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	if identifier == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "identifier is required"))
		return
	}
	if err := h.lockouts.RecordSuccess(r.Context(), identifier); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(r.Context(), "lockout cleared by admin", "identifier", identifier)
	w.WriteHeader(http.StatusNoContent)
}
