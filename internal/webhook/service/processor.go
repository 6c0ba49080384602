// Package service processes verified webhook events exactly once.
//
// The processor runs a fixed pipeline: reject stale deliveries, claim the
// event in the receipt ledger, dispatch the side effect, finalize the
// receipt. The ledger insert is the only synchronization point; whichever
// delivery wins the INSERT owns the side effect, every other delivery of
// the same event reports duplicate and does nothing.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	donationmodels "uplift/internal/donations/models"
	"uplift/internal/donations/store/donation"
	"uplift/internal/webhook/metrics"
	"uplift/internal/webhook/models"
	"uplift/internal/webhook/store/receipt"
	"uplift/pkg/platform/audit"
	"uplift/pkg/platform/middleware/requesttime"
)

// maxEventAge is how old a delivery may be before it is rejected outright.
// Stale deliveries never reach the ledger or the donation store.
const maxEventAge = 5 * time.Minute

const tracerName = "uplift/internal/webhook/service"

// Processor applies webhook events to donations at most once.
type Processor struct {
	receipts  receipt.Store
	donations donation.Store
	provider  string
	logger    *slog.Logger
	audit     *audit.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// Option configures a Processor instance.
type Option func(*Processor)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithAuditLogger sets the audit logger for webhook lifecycle events.
func WithAuditLogger(a *audit.Logger) Option {
	return func(p *Processor) {
		p.audit = a
	}
}

// WithMetrics sets the metrics recorder for observability.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) {
		p.metrics = m
	}
}

// New creates a processor for one payment provider.
func New(receipts receipt.Store, donations donation.Store, provider string, opts ...Option) (*Processor, error) {
	if receipts == nil {
		return nil, errors.New("receipt store is required")
	}
	if donations == nil {
		return nil, errors.New("donation store is required")
	}
	if provider == "" {
		return nil, errors.New("provider is required")
	}

	p := &Processor{
		receipts:  receipts,
		donations: donations,
		provider:  provider,
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Process runs one verified event through the pipeline. The returned Result
// is always safe to serve with HTTP 200; an error means the ledger itself
// failed and the provider should retry the delivery.
func (p *Processor) Process(ctx context.Context, event *models.Event) (*models.Result, error) {
	ctx, span := p.tracer.Start(ctx, "webhook.Process",
		trace.WithAttributes(
			attribute.String("webhook.provider", p.provider),
			attribute.String("webhook.event_id", event.ID),
			attribute.String("webhook.event_type", event.Type),
		))
	defer span.End()

	now := requesttime.Now(ctx)
	if now.Sub(event.Created) > maxEventAge {
		p.logger.WarnContext(ctx, "rejecting stale webhook event",
			"provider", p.provider,
			"event_id", event.ID,
			"age", now.Sub(event.Created).String(),
		)
		p.recordOutcome("rejected")
		span.SetAttributes(attribute.String("webhook.outcome", "rejected"))
		return &models.Result{Received: true, Rejected: true}, nil
	}

	inserted, err := p.receipts.InsertIfAbsent(ctx, p.provider, event.ID, event.Type)
	if err != nil {
		return nil, fmt.Errorf("claim webhook event: %w", err)
	}
	if !inserted {
		p.logger.InfoContext(ctx, "duplicate webhook delivery ignored",
			"provider", p.provider, "event_id", event.ID)
		p.recordOutcome("duplicate")
		span.SetAttributes(attribute.String("webhook.outcome", "duplicate"))
		return &models.Result{Received: true, Duplicate: true}, nil
	}

	p.logAudit(ctx, event, audit.ActionWebhookReceived, "")

	if err := p.dispatch(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "webhook dispatch failed",
			"provider", p.provider,
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err,
		)
		if markErr := p.receipts.MarkFailed(ctx, p.provider, event.ID, err.Error()); markErr != nil {
			p.logger.ErrorContext(ctx, "failed to mark webhook receipt failed",
				"provider", p.provider, "event_id", event.ID, "error", markErr)
		}
		p.logAudit(ctx, event, audit.ActionWebhookFailed, err.Error())
		p.recordOutcome("failed")
		span.SetAttributes(attribute.String("webhook.outcome", "failed"))
		return &models.Result{Received: true, ProcessingError: true}, nil
	}

	if err := p.receipts.MarkProcessed(ctx, p.provider, event.ID); err != nil {
		// The side effect landed; the receipt stays in received. Safe,
		// because the ledger row already blocks redelivery.
		p.logger.ErrorContext(ctx, "failed to mark webhook receipt processed",
			"provider", p.provider, "event_id", event.ID, "error", err)
	}
	p.logAudit(ctx, event, audit.ActionWebhookProcessed, "")
	p.recordOutcome("processed")
	span.SetAttributes(attribute.String("webhook.outcome", "processed"))
	return &models.Result{Received: true}, nil
}

// eventPayload is the slice of the provider payload the dispatcher reads.
type eventPayload struct {
	Object struct {
		Metadata map[string]string `json:"metadata"`
	} `json:"object"`
}

func (p *Processor) dispatch(ctx context.Context, event *models.Event) error {
	var status donationmodels.PaymentStatus
	switch event.Type {
	case models.EventPaymentSucceeded:
		status = donationmodels.PaymentCompleted
	case models.EventPaymentFailed:
		status = donationmodels.PaymentFailed
	case models.EventChargeRefunded:
		status = donationmodels.PaymentRefunded
	default:
		p.logger.InfoContext(ctx, "ignoring webhook event of unhandled type",
			"provider", p.provider, "event_type", event.Type)
		return nil
	}

	var payload eventPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return fmt.Errorf("decode event payload: %w", err)
	}
	donationID := payload.Object.Metadata["donationId"]
	if donationID == "" {
		return errors.New("event payload has no donationId metadata")
	}

	if err := p.donations.UpdatePaymentStatus(ctx, donationID, status); err != nil {
		return fmt.Errorf("update donation %s to %s: %w", donationID, status, err)
	}
	return nil
}

func (p *Processor) recordOutcome(outcome string) {
	if p.metrics != nil {
		p.metrics.RecordOutcome(p.provider, outcome)
	}
}

func (p *Processor) logAudit(ctx context.Context, event *models.Event, action, detail string) {
	if p.audit == nil {
		return
	}
	p.audit.Log(ctx, audit.Event{
		Subject: p.provider + ":" + event.ID,
		Action:  action,
		Detail:  detail,
	})
}
