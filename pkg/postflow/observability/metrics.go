package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records pipeline metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordStageExecution records one stage execution with its duration
	// and error status.
	RecordStageExecution(ctx context.Context, stage string, duration time.Duration, err error)

	// RecordRun records a pipeline run completion with its outcome.
	RecordRun(ctx context.Context, outcome string, duration time.Duration)

	// RecordArtifact records a persisted image artifact.
	RecordArtifact(ctx context.Context, sizeBytes int64)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	stageExecutions metric.Int64Counter
	stageLatency    metric.Float64Histogram
	stageErrors     metric.Int64Counter
	runs            metric.Int64Counter
	runLatency      metric.Float64Histogram
	artifactSize    metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the default OTel metrics instance.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("postflow")

	stageExecutions, err := meter.Int64Counter("postflow.stage.executions",
		metric.WithDescription("Number of stage executions"),
	)
	if err != nil {
		return nil, err
	}

	stageLatency, err := meter.Float64Histogram("postflow.stage.latency_ms",
		metric.WithDescription("Stage execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	stageErrors, err := meter.Int64Counter("postflow.stage.errors",
		metric.WithDescription("Number of stage execution errors"),
	)
	if err != nil {
		return nil, err
	}

	runs, err := meter.Int64Counter("postflow.run.completions",
		metric.WithDescription("Number of pipeline runs by outcome"),
	)
	if err != nil {
		return nil, err
	}

	runLatency, err := meter.Float64Histogram("postflow.run.latency_ms",
		metric.WithDescription("Pipeline run latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	artifactSize, err := meter.Int64Histogram("postflow.artifact.size_bytes",
		metric.WithDescription("Persisted image artifact size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		stageExecutions: stageExecutions,
		stageLatency:    stageLatency,
		stageErrors:     stageErrors,
		runs:            runs,
		runLatency:      runLatency,
		artifactSize:    artifactSize,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder backed by the global OTel
// meter provider. Falls back to NoopMetrics if instrument creation fails.
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		return NoopMetrics{}
	}
	return m
}

// RecordStageExecution implements MetricsRecorder.
func (m *otelMetrics) RecordStageExecution(ctx context.Context, stage string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.Bool("success", err == nil),
	)
	m.stageExecutions.Add(ctx, 1, attrs)
	m.stageLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		m.stageErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("stage", stage),
		))
	}
}

// RecordRun implements MetricsRecorder.
func (m *otelMetrics) RecordRun(ctx context.Context, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("outcome", outcome),
	)
	m.runs.Add(ctx, 1, attrs)
	m.runLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordArtifact implements MetricsRecorder.
func (m *otelMetrics) RecordArtifact(ctx context.Context, sizeBytes int64) {
	m.artifactSize.Record(ctx, sizeBytes)
}
