package workflow

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("rosca-backend/workflow")

// startSpan opens a trace span around a posting operation so the gorm spans
// from otelgorm nest under the workflow that issued them.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}
