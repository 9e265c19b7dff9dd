package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

var _ MetricsRecorder = NoopMetrics{}

// RecordFilterDecision does nothing.
func (NoopMetrics) RecordFilterDecision(context.Context, string, bool) {}

// RecordTagDecision does nothing.
func (NoopMetrics) RecordTagDecision(context.Context, string, bool, bool) {}

// RecordRun does nothing.
func (NoopMetrics) RecordRun(context.Context, int, time.Duration, error) {}

// NoopSpanManager is a SpanManager that does nothing.
type NoopSpanManager struct{}

var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartRunSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartRunSpan(ctx context.Context, _ string, _ int) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartWorkerSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartWorkerSpan(ctx context.Context, _ int, _ int64) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(trace.Span, error) {}
