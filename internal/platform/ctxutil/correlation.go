package ctxutil

import "context"

type correlationKey struct{}

// Correlation ties log lines and responses for one cart request together.
// TraceID is empty when the request carries no trace.
type Correlation struct {
	RequestID string
	TraceID   string
}

func WithCorrelation(ctx context.Context, c Correlation) context.Context {
	return context.WithValue(ctx, correlationKey{}, c)
}

func CorrelationFrom(ctx context.Context) (Correlation, bool) {
	if ctx == nil {
		return Correlation{}, false
	}
	c, ok := ctx.Value(correlationKey{}).(Correlation)
	return c, ok
}

// LogFields returns the non-empty ids as logger key/value pairs.
func (c Correlation) LogFields() []interface{} {
	fields := make([]interface{}, 0, 4)
	if c.RequestID != "" {
		fields = append(fields, "request_id", c.RequestID)
	}
	if c.TraceID != "" {
		fields = append(fields, "trace_id", c.TraceID)
	}
	return fields
}
