// Package handler serves donation payment state reads.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"uplift/internal/donations/store/donation"
	"uplift/internal/sentinel"
	dErrors "uplift/pkg/domain-errors"
	"uplift/pkg/platform/httputil"
)

// Handler exposes donation reads so operators can confirm webhook outcomes.
type Handler struct {
	donations donation.Store
	logger    *slog.Logger
}

func New(donations donation.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{donations: donations, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/donations/{id}", h.HandleGet)
}

// DonationResponse is the read model served to operators.
type DonationResponse struct {
	ID            string `json:"id"`
	AmountCents   int64  `json:"amount_cents"`
	PaymentStatus string `json:"payment_status"`
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := h.donations.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "donation not found"))
			return
		}
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donation"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &DonationResponse{
		ID:            d.ID,
		AmountCents:   d.AmountCents,
		PaymentStatus: string(d.PaymentStatus),
	})
}
