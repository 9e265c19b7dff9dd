package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTracingTest creates a test tracer provider with an in-memory span recorder.
func setupTracingTest(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer("kappa")

	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		tracer = otel.Tracer("kappa")
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	})
	return exporter
}

func attrString(s tracetest.SpanStub, key string) string {
	for _, attr := range s.Attributes {
		if string(attr.Key) == key {
			return attr.Value.Emit()
		}
	}
	return ""
}

func TestStartRunAndWorkerSpans(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	ctx, run := sm.StartRunSpan(context.Background(), "run-123", 40)
	_, worker := sm.StartWorkerSpan(ctx, 2, 1002)
	sm.EndSpanWithError(worker, nil)
	sm.EndSpanWithError(run, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	w, r := spans[0], spans[1]
	assert.Equal(t, "kappa.worker", w.Name)
	assert.Equal(t, "kappa.run", r.Name)
	assert.Equal(t, "run-123", attrString(r, "run.id"))
	assert.Equal(t, "40", attrString(r, "run.records"))
	assert.Equal(t, "2", attrString(w, "worker.index"))
	assert.Equal(t, "1002", attrString(w, "btag.seed"))
	assert.Equal(t, r.SpanContext.SpanID(), w.Parent.SpanID(), "worker span must be a child of the run span")
	assert.Equal(t, codes.Ok, r.Status.Code)
}

func TestEndSpanWithError(t *testing.T) {
	exporter := setupTracingTest(t)

	_, span := StartRunSpan(context.Background(), "run-err", 1)
	EndSpanWithError(span, errors.New("context canceled"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "context canceled", spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)

	assert.NotPanics(t, func() { EndSpanWithError(nil, nil) })
}

func TestNoopSpanManagerExportsNothing(t *testing.T) {
	exporter := setupTracingTest(t)
	var sm SpanManager = NoopSpanManager{}

	ctx := context.Background()
	got, span := sm.StartRunSpan(ctx, "run", 1)
	assert.Equal(t, ctx, got)
	assert.False(t, span.IsRecording())

	_, span = sm.StartWorkerSpan(ctx, 0, 0)
	sm.EndSpanWithError(span, errors.New("ignored"))

	assert.Empty(t, exporter.GetSpans())
	assert.False(t, trace.SpanFromContext(got).SpanContext().IsValid())
}
