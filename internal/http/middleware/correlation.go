package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/cart-backend/internal/platform/ctxutil"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderTraceID   = "X-Trace-Id"

	maxRequestIDLen = 128
)

// Correlate attaches a request id and, when one is known, a trace id to
// the request context and echoes both on the response. An active span's
// trace id wins over the inbound header.
func Correlate() gin.HandlerFunc {
	return func(c *gin.Context) {
		corr := ctxutil.Correlation{
			RequestID: inboundRequestID(c.GetHeader(HeaderRequestID)),
			TraceID:   strings.TrimSpace(c.GetHeader(HeaderTraceID)),
		}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			corr.TraceID = sc.TraceID().String()
		}
		if !printableID(corr.TraceID) {
			corr.TraceID = ""
		}

		c.Request = c.Request.WithContext(ctxutil.WithCorrelation(c.Request.Context(), corr))
		c.Header(HeaderRequestID, corr.RequestID)
		if corr.TraceID != "" {
			c.Header(HeaderTraceID, corr.TraceID)
		}
		c.Next()
	}
}

// inboundRequestID keeps a caller-supplied id only when it is safe to log.
func inboundRequestID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || !printableID(v) {
		return uuid.NewString()
	}
	return v
}

func printableID(v string) bool {
	if len(v) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(v); i++ {
		if v[i] < 0x21 || v[i] > 0x7e {
			return false
		}
	}
	return true
}
