package observability

import "context"

type correlationKey struct{}

// WithCorrelationID returns a context carrying the correlation ID that both
// outbound clients attach as X-Correlation-ID, tying the geocode and weather
// requests of one search action together in upstream logs.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationIDFromContext returns the correlation ID or "" when absent.
func CorrelationIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(correlationKey{}).(string); ok {
		return v
	}
	return ""
}
