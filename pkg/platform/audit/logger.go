package audit

import (
	"context"
	"log/slog"

	"uplift/pkg/requestcontext"
)

// Logger provides structured audit logging with optional durable persistence.
// Use this in services to standardize audit logging patterns.
//
// Store append failures are logged and swallowed: the primary operation an
// audit event annotates (login tracking, payment processing) must never fail
// because the audit trail is unavailable.
type Logger struct {
	textLogger *slog.Logger
	store      Store
}

// NewLogger creates an audit logger.
// textLogger is used for structured logging; store is optional for event persistence.
func NewLogger(textLogger *slog.Logger, store Store) *Logger {
	return &Logger{
		textLogger: textLogger,
		store:      store,
	}
}

// Log logs an audit event to text and best-efforts the durable append.
// Automatically enriches with request_id from context.
func (l *Logger) Log(ctx context.Context, event Event) {
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if l.textLogger != nil {
		l.textLogger.InfoContext(ctx, event.Action,
			"subject", event.Subject,
			"detail", event.Detail,
			"request_id", event.RequestID,
			"event", event.Action,
			"log_type", "audit",
		)
	}

	if l.store == nil {
		return
	}
	if err := l.store.Append(ctx, event); err != nil && l.textLogger != nil {
		l.textLogger.ErrorContext(ctx, "failed to append audit event",
			"error", err,
			"event", event.Action,
			"subject", event.Subject,
		)
	}
}
