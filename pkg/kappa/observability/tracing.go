package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("kappa")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
//
// Spans cover a run and each worker within it, never single events: a
// span per event would dwarf the work being traced.
type SpanManager interface {
	// StartRunSpan starts a span for a whole run.
	StartRunSpan(ctx context.Context, runID string, records int) (context.Context, trace.Span)

	// StartWorkerSpan starts a child span for one worker of a run.
	StartWorkerSpan(ctx context.Context, worker int, seed int64) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)
}

type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

func (m *otelSpanManager) StartRunSpan(ctx context.Context, runID string, records int) (context.Context, trace.Span) {
	return StartRunSpan(ctx, runID, records)
}

func (m *otelSpanManager) StartWorkerSpan(ctx context.Context, worker int, seed int64) (context.Context, trace.Span) {
	return StartWorkerSpan(ctx, worker, seed)
}

func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

// StartRunSpan starts a span for a run using the global tracer.
func StartRunSpan(ctx context.Context, runID string, records int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "kappa.run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.records", records),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartWorkerSpan starts a span for one worker using the global tracer.
func StartWorkerSpan(ctx context.Context, worker int, seed int64) (context.Context, trace.Span) {
	return tracer.Start(ctx, "kappa.worker",
		trace.WithAttributes(
			attribute.Int("worker.index", worker),
			attribute.Int64("btag.seed", seed),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
