package log

import "context"

const CorrelationHeader = "X-Correlation-ID"

// ContextWithCorrelationID stores id for later GetOrGenerateCorrelationID calls.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelatedIDKey, id)
}

func ContextWithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, LoggerKeyForContext, l)
}

// CorrelationIDFromContext returns the stored id or "" when none was set.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(CorrelatedIDKey).(string)
	return id
}
