package pipeline

import (
	"log/slog"

	"github.com/artus-hep/kappa/pkg/kappa/btag/calibstore"
	kerrors "github.com/artus-hep/kappa/pkg/kappa/errors"
	"github.com/artus-hep/kappa/pkg/kappa/observability"
)

// runConfig holds configuration for a Runner.
type runConfig struct {
	workers int
	runID   string
	source  calibstore.Source
	retry   kerrors.RetryConfig
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

// defaultRunConfig returns the default runner configuration.
func defaultRunConfig() runConfig {
	return runConfig{
		workers: 1,
		source:  calibstore.Default(),
		retry:   kerrors.NoRetry,
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// RunOption configures a Runner.
type RunOption func(*runConfig)

// WithWorkers sets the number of workers.
// Default: 1
//
// The worker count is part of the result: changing it changes which
// engine, and therefore which random stream, tags each record.
func WithWorkers(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithRunID fixes the run id instead of generating one per run.
func WithRunID(id string) RunOption {
	return func(c *runConfig) {
		c.runID = id
	}
}

// WithCalibrationSource loads the calibration from src at the start of
// every run.
// Default: the built-in calibration
func WithCalibrationSource(src calibstore.Source) RunOption {
	return func(c *runConfig) {
		if src != nil {
			c.source = src
		}
	}
}

// WithCalibrationRetry retries transient calibration load failures, such
// as a locked database.
// Default: errors.NoRetry
func WithCalibrationRetry(cfg kerrors.RetryConfig) RunOption {
	return func(c *runConfig) {
		c.retry = cfg
	}
}

// WithLogger enables structured logging.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	runner, err := pipeline.NewRunner(chain, settings, pipeline.WithLogger(logger))
func WithLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics records filter, tag and run metrics.
// Use observability.NewMetricsRecorder for OpenTelemetry.
func WithMetrics(m observability.MetricsRecorder) RunOption {
	return func(c *runConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing creates a span per run and per worker.
// Use observability.NewSpanManager for OpenTelemetry.
func WithTracing(spans observability.SpanManager) RunOption {
	return func(c *runConfig) {
		if spans != nil {
			c.spans = spans
		}
	}
}
