// Package observability provides structured logging, metrics and tracing
// for kappa jobs.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
// Logging helpers accept a nil logger and do nothing with it, so hot paths
// can call them unconditionally.
package observability

import (
	"log/slog"

	kerrors "github.com/artus-hep/kappa/pkg/kappa/errors"
)

// EnrichLogger adds job context to a logger.
func EnrichLogger(logger *slog.Logger, runID string, worker int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("run_id", runID),
		slog.Int("worker", worker),
	)
}

// LogRunStart logs the start of a job run.
func LogRunStart(logger *slog.Logger, runID string, records, workers int) {
	if logger == nil {
		return
	}
	logger.Info("run starting",
		slog.String("run_id", runID),
		slog.Int("records", records),
		slog.Int("workers", workers),
	)
}

// LogRunComplete logs successful run completion.
func LogRunComplete(logger *slog.Logger, runID string, durationMs float64, passed, total int) {
	if logger == nil {
		return
	}
	logger.Info("run completed",
		slog.String("run_id", runID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("passed", passed),
		slog.Int("total", total),
	)
}

// LogRunError logs run failure.
func LogRunError(logger *slog.Logger, runID string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("run failed",
		slog.String("run_id", runID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogFilterRejected logs the filter that rejected an event.
func LogFilterRejected(logger *slog.Logger, filterID string, run uint32, event uint64) {
	if logger == nil {
		return
	}
	logger.Debug("event rejected",
		slog.String("filter_id", filterID),
		slog.Uint64("run", uint64(run)),
		slog.Uint64("event", event),
	)
}

// LogEpochFallback logs that an unsupported calibration epoch was replaced.
// cause is classified with errors.Categorize, normally as domain_range.
func LogEpochFallback(logger *slog.Logger, requested, resolved int, cause error) {
	if logger == nil {
		return
	}
	attrs := []any{
		slog.Int("requested", requested),
		slog.Int("resolved", resolved),
	}
	if cause != nil {
		attrs = append(attrs,
			slog.String("category", kerrors.Categorize(cause).String()),
			slog.String("error", cause.Error()),
		)
	}
	logger.Debug("calibration epoch not supported, using nearest", attrs...)
}

// LogCalibrationLoaded logs a successfully loaded calibration.
func LogCalibrationLoaded(logger *slog.Logger, source string, epochs []int) {
	if logger == nil {
		return
	}
	logger.Info("calibration loaded",
		slog.String("source", source),
		slog.Any("epochs", epochs),
	)
}
