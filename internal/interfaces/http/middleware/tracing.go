package middleware

import (
	"net/http"

	"github.com/erp/omnisync/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing returns the otelgin middleware, or a pass-through when disabled.
// Spans are named "METHOD /route/:param".
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// TraceIDHeader echoes the trace id of the request span to the caller
const TraceIDHeader = "X-Trace-ID"

// SpanEnricher tags the request span with the request id and the :channel
// route parameter, and marks 4xx responses as errors. It must run after
// Tracing so the span is still open.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		if id := c.GetString(RequestIDKey); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if traceID := telemetry.GetTraceID(c.Request.Context()); traceID != "" {
			c.Header(TraceIDHeader, traceID)
		}
		if ch := c.Param("channel"); ch != "" {
			span.SetAttributes(attribute.String(telemetry.SpanAttrChannel, ch))
		}

		c.Next()

		// otelgin sets the status of 5xx spans itself once this returns
		if status := c.Writer.Status(); status >= http.StatusBadRequest && status < http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
