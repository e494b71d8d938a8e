package api

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies governance API spans in exported traces.
const tracerName = "signoria/governance/api"

// startRequestSpan opens a span for one handled request. With no provider
// configured the returned span is a no-op.
func startRequestSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name)
}

// traceIDFromContext reports the active trace id for log correlation, or ""
// when the request is not traced.
func traceIDFromContext(ctx context.Context) string {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return ""
	}
	return spanContext.TraceID().String()
}
