package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/accounthub/accounthub/internal/tracing"
)

// WithTracing attaches a trace id to every request, honoring the configured
// inbound header when present.
func WithTracing(cfg tracing.Config) gin.HandlerFunc {
	traceHeader := cfg.TraceHeader
	if traceHeader == "" {
		traceHeader = "X-Trace-Id"
	}

	return func(c *gin.Context) {
		traceID := c.GetHeader(traceHeader)
		if traceID == "" {
			traceID = tracing.GenerateTraceID()
		}

		ctx := tracing.WithTraceID(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(traceHeader, traceID)

		c.Next()
	}
}
