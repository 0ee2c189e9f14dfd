package workflow

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestStartSpan_PropagatesSpanOnContext(t *testing.T) {
	ctx, span := startSpan(context.Background(), "workflow.ProcessRepayment")
	defer span.End()

	got := trace.SpanFromContext(ctx)
	if got == nil {
		t.Fatal("context carries no span")
	}
	if !got.SpanContext().Equal(span.SpanContext()) {
		t.Error("context span differs from the started span")
	}
}
