package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// FromContext returns the global logger enriched with the trace and span ids
// of the active span, when one is recorded on the context.
func FromContext(ctx context.Context) *zap.Logger {
	log := zap.L()
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		log = log.With(
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	return log
}
