// Package requestcontext carries request-scoped correlation data through
// context.Context so services can enrich logs and audit events without
// depending on the transport layer.
package requestcontext

import "context"

type contextKeyRequestID struct{}

// WithRequestID returns a context carrying the given request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID{}, requestID)
}

// RequestID returns the request ID from the context, or "" if none is set.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyRequestID{}).(string); ok {
		return v
	}
	return ""
}
