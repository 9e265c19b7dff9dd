package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records kappa metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordFilterDecision records one filter evaluation.
	RecordFilterDecision(ctx context.Context, filterID string, passed bool)

	// RecordTagDecision records one simulated jet tag decision.
	// A flip is counted when final differs from raw.
	RecordTagDecision(ctx context.Context, flavor string, raw, final bool)

	// RecordRun records a completed run over a batch of records.
	RecordRun(ctx context.Context, records int, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	filterDecisions metric.Int64Counter
	tagDecisions    metric.Int64Counter
	tagFlips        metric.Int64Counter
	runRecords      metric.Int64Counter
	runLatency      metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("kappa")

	filterDecisions, err := meter.Int64Counter("kappa.filter.decisions",
		metric.WithDescription("Number of filter evaluations"),
	)
	if err != nil {
		return nil, err
	}

	tagDecisions, err := meter.Int64Counter("kappa.btag.decisions",
		metric.WithDescription("Number of simulated jet tag decisions"),
	)
	if err != nil {
		return nil, err
	}

	tagFlips, err := meter.Int64Counter("kappa.btag.flips",
		metric.WithDescription("Number of tag decisions changed by the scale factor correction"),
	)
	if err != nil {
		return nil, err
	}

	runRecords, err := meter.Int64Counter("kappa.run.records",
		metric.WithDescription("Number of records processed by runs"),
	)
	if err != nil {
		return nil, err
	}

	runLatency, err := meter.Float64Histogram("kappa.run.latency_ms",
		metric.WithDescription("Run latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		filterDecisions: filterDecisions,
		tagDecisions:    tagDecisions,
		tagFlips:        tagFlips,
		runRecords:      runRecords,
		runLatency:      runLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordFilterDecision records a filter evaluation.
func (m *otelMetrics) RecordFilterDecision(ctx context.Context, filterID string, passed bool) {
	m.filterDecisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("filter_id", filterID),
		attribute.Bool("passed", passed),
	))
}

// RecordTagDecision records a tag decision and, if it changed, a flip.
func (m *otelMetrics) RecordTagDecision(ctx context.Context, flavor string, raw, final bool) {
	attrs := metric.WithAttributes(
		attribute.String("flavor", flavor),
		attribute.Bool("tagged", final),
	)
	m.tagDecisions.Add(ctx, 1, attrs)
	if raw != final {
		m.tagFlips.Add(ctx, 1, metric.WithAttributes(
			attribute.String("flavor", flavor),
			attribute.Bool("promoted", final),
		))
	}
}

// RecordRun records a run.
func (m *otelMetrics) RecordRun(ctx context.Context, records int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.Bool("success", err == nil))
	m.runRecords.Add(ctx, int64(records), attrs)
	m.runLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}
