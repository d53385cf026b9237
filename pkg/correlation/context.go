package correlation

import "context"

type contextKey string

const (
	contextKeyCorrelationID contextKey = "correlationID"
	contextKeyRequestID     contextKey = "requestID"
)

const (
	// DefaultHeader carries the correlation id across service boundaries.
	DefaultHeader = "X-Trace-ID"

	// RequestIDHeader carries the per-hop request id.
	RequestIDHeader = "Request-Id"
)

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyCorrelationID, id)
}

// FromContext returns the correlation id stored in ctx, or "" when absent.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeyCorrelationID).(string); ok {
		return id
	}

	return ""
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return id
	}

	return ""
}
