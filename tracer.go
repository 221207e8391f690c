package jwtstrategy

import (
	"context"

	"go.opentelemetry.io/otel"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/bearerauth/jwtstrategy"

// tracer wraps the OpenTelemetry tracer used to span each
// authentication attempt. With no SDK installed the global provider
// yields no-op spans, so tracing costs nothing unless wired up.
type tracer struct {
	t oteltrace.Tracer
}

func newTracer() tracer {
	return tracer{t: otel.Tracer(tracerName)}
}

func (tr tracer) isZero() bool {
	return tr.t == nil
}

func (tr tracer) start(ctx context.Context) (context.Context, oteltrace.Span) {
	return tr.t.Start(ctx, "jwtstrategy.Authenticate")
}
