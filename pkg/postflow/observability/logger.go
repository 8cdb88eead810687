// Package observability provides structured logging, metrics, and
// distributed tracing for postflow pipeline runs.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds pipeline context to a logger.
// Returns a new logger with run_id and stage fields.
func EnrichLogger(logger *slog.Logger, runID, stage string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("run_id", runID),
		slog.String("stage", stage),
	)
}

// LogRunStart logs the start of a pipeline run.
func LogRunStart(logger *slog.Logger, runID, topic, platform, tone string) {
	if logger == nil {
		return
	}
	logger.Info("pipeline run starting",
		slog.String("run_id", runID),
		slog.String("topic", topic),
		slog.String("platform", platform),
		slog.String("tone", tone),
	)
}

// LogRunComplete logs a pipeline run that reached Done.
func LogRunComplete(logger *slog.Logger, runID, outcome string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("pipeline run completed",
		slog.String("run_id", runID),
		slog.String("outcome", outcome),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogRunError logs a pipeline run that reached Failed.
func LogRunError(logger *slog.Logger, runID, stage string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("pipeline run failed",
		slog.String("run_id", runID),
		slog.String("stage", stage),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogStageStart logs stage execution start.
func LogStageStart(logger *slog.Logger, stage string) {
	if logger == nil {
		return
	}
	logger.Debug("stage starting",
		slog.String("stage", stage),
	)
}

// LogStageComplete logs successful stage completion.
func LogStageComplete(logger *slog.Logger, stage string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("stage completed",
		slog.String("stage", stage),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogStageError logs stage execution error.
func LogStageError(logger *slog.Logger, stage string, err error) {
	if logger == nil {
		return
	}
	logger.Error("stage failed",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
}

// LogStageDegraded logs a non-load-bearing stage failure that the
// pipeline absorbed.
func LogStageDegraded(logger *slog.Logger, stage string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("stage failed, continuing degraded",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
}

// LogNotifierPanic logs a recovered panic from a progress notifier
// (non-fatal).
func LogNotifierPanic(logger *slog.Logger, stage string, value any) {
	if logger == nil {
		return
	}
	logger.Warn("notifier panicked",
		slog.String("stage", stage),
		slog.Any("panic", value),
	)
}

// LogArtifactSaved logs a persisted image artifact.
func LogArtifactSaved(logger *slog.Logger, path string, sizeBytes int64) {
	if logger == nil {
		return
	}
	logger.Debug("artifact saved",
		slog.String("path", path),
		slog.Int64("size_bytes", sizeBytes),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in
// milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
