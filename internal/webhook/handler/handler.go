// Package handler exposes the payment webhook endpoint.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"uplift/internal/webhook/models"
	dErrors "uplift/pkg/domain-errors"
	"uplift/pkg/platform/httputil"
)

// maxBodyBytes caps webhook request bodies. Provider events are small;
// anything larger is abuse.
const maxBodyBytes = 1 << 20

// SignatureHeader carries the provider's payload signature.
const SignatureHeader = "X-Webhook-Signature"

// EventVerifier authenticates a raw webhook payload. Implementations wrap
// the provider SDK's verification; VerifyAndParse returns the decoded event
// only when the signature checks out.
type EventVerifier interface {
	VerifyAndParse(payload []byte, signature string) (*models.Event, error)
}

// EventProcessor is the slice of the webhook service the handler needs.
type EventProcessor interface {
	Process(ctx context.Context, event *models.Event) (*models.Result, error)
}

// Handler terminates provider webhook deliveries.
type Handler struct {
	verifier  EventVerifier
	processor EventProcessor
	logger    *slog.Logger
}

// New creates the webhook handler.
func New(verifier EventVerifier, processor EventProcessor, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{verifier: verifier, processor: processor, logger: logger}
}

// RegisterRoutes mounts the webhook endpoints on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/webhooks/payments", h.HandlePaymentEvent)
}

// HandlePaymentEvent verifies and processes one delivery. Every verified
// event gets a 200 regardless of what processing decided; non-200 statuses
// are reserved for requests that are not authentic provider deliveries, so
// the provider only retries when a retry can help.
func (h *Handler) HandlePaymentEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	signature := r.Header.Get(SignatureHeader)
	if signature == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "missing webhook signature"))
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "unreadable request body"))
		return
	}

	event, err := h.verifier.VerifyAndParse(payload, signature)
	if err != nil {
		h.logger.WarnContext(ctx, "webhook signature verification failed", "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid webhook signature"))
		return
	}

	result, err := h.processor.Process(ctx, event)
	if err != nil {
		// Ledger unavailable. A 500 makes the provider redeliver, and the
		// ledger will dedupe once it is back.
		h.logger.ErrorContext(ctx, "webhook processing unavailable",
			"event_id", event.ID, "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "webhook processing failed"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
