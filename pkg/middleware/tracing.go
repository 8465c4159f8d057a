package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/career-passport/pkg/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Tracing opens a server span per request and records latency metrics.
// metrics may be nil.
func Tracing(metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx, span := telemetry.StartSpan(ctx, fmt.Sprintf("%s %s", c.Request.Method, route),
			trace.WithSpanKind(trace.SpanKindServer),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		if metrics != nil {
			metrics.Inflight.Inc(ctx)
		}

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(
			telemetry.MethodAttr(c.Request.Method),
			telemetry.PathAttr(route),
			telemetry.StatusCodeAttr(status),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
		}

		if metrics != nil {
			metrics.Inflight.Dec(ctx)
			metrics.RequestDuration.Record(ctx, time.Since(start).Seconds(),
				telemetry.MethodAttr(c.Request.Method),
				telemetry.PathAttr(route),
				telemetry.StatusCodeAttr(status),
			)
		}
	}
}
