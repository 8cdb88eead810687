package postflow

import (
	"log/slog"

	"github.com/randalmurphal/postflow/pkg/postflow/observability"
)

// Option configures a Pipeline at construction time.
type Option func(*Pipeline)

// WithNotifier sets the default progress notifier for all runs.
// Default: NopNotifier.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) {
		if n != nil {
			p.notifier = n
		}
	}
}

// WithLogger sets the structured logger for run and stage events.
// Default: no logging.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics recording.
// Default: disabled.
func WithMetrics(enabled bool) Option {
	return func(p *Pipeline) {
		if enabled {
			p.metrics = observability.NewMetricsRecorder()
		} else {
			p.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry span creation per run and stage.
// Default: disabled.
func WithTracing(enabled bool) Option {
	return func(p *Pipeline) {
		p.tracingEnabled = enabled
		if enabled {
			p.spans = observability.NewSpanManager()
		} else {
			p.spans = observability.NoopSpanManager{}
		}
	}
}

// WithImageStyle sets the style passed to the image stage.
// Default: DefaultImageStyle.
func WithImageStyle(style string) Option {
	return func(p *Pipeline) {
		if style != "" {
			p.imageStyle = style
		}
	}
}

// WithImageSize sets the dimensions passed to the image stage.
// Default: DefaultImageSize.
func WithImageSize(size string) Option {
	return func(p *Pipeline) {
		if size != "" {
			p.imageSize = size
		}
	}
}

// runConfig holds per-run configuration.
type runConfig struct {
	runID    string
	notifier Notifier
}

// RunOption configures a single Run call.
type RunOption func(*runConfig)

// WithRunID sets the run identifier instead of generating one.
// Callers that surface progress to a transport assign the ID up front so
// subscribers can be registered before the run starts.
func WithRunID(id string) RunOption {
	return func(c *runConfig) {
		if id != "" {
			c.runID = id
		}
	}
}

// WithRunNotifier overrides the pipeline's notifier for one run.
func WithRunNotifier(n Notifier) RunOption {
	return func(c *runConfig) {
		if n != nil {
			c.notifier = n
		}
	}
}
