package postflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/postflow/pkg/postflow/observability"
)

// Pipeline sequences the three stage invokers as an explicit state
// machine: Init -> Researching -> ContentGenerating -> ImageGenerating
// -> Done, with Failed reachable from the first two working phases.
//
// Research and content are load-bearing: any failure there stops the
// run. Image generation is best-effort: its failure is recorded and the
// run still reaches Done without an image.
//
// A Pipeline is safe for concurrent use; every Run owns its own State.
type Pipeline struct {
	research ResearchInvoker
	content  ContentInvoker
	image    ImageInvoker

	notifier       Notifier
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool

	imageStyle string
	imageSize  string
}

// New creates a Pipeline over the three stage invokers.
func New(research ResearchInvoker, content ContentInvoker, image ImageInvoker, opts ...Option) (*Pipeline, error) {
	if research == nil || content == nil || image == nil {
		return nil, ErrNilInvoker
	}
	p := &Pipeline{
		research:   research,
		content:    content,
		image:      image,
		notifier:   NopNotifier{},
		metrics:    observability.NoopMetrics{},
		spans:      observability.NoopSpanManager{},
		imageStyle: DefaultImageStyle,
		imageSize:  DefaultImageSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run drives one execution through the state machine and returns the
// final snapshot.
//
// The returned error is nil when the run reaches Done - including the
// degraded case where the image stage failed; inspect State.Outcome to
// tell the two apart. A *PipelineError is returned when a load-bearing
// stage fails, a *CancellationError when ctx is cancelled at a stage
// boundary. In every case the snapshot holds whatever was produced
// before the terminal transition.
func (p *Pipeline) Run(ctx context.Context, topic string, platform Platform, tone Tone, opts ...RunOption) (*State, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	cfg := runConfig{notifier: p.notifier}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.runID == "" {
		cfg.runID = uuid.NewString()
	}

	st := newState(cfg.runID, topic, platform, tone)
	start := time.Now()

	observability.LogRunStart(p.logger, st.RunID, topic, string(platform), string(tone))

	var runSpan trace.Span
	if p.tracingEnabled {
		ctx, runSpan = p.spans.StartRunSpan(ctx, st.RunID, topic)
	}

	var runErr error
	st, runErr = p.execute(ctx, st, start, &cfg)

	st.Elapsed = time.Since(start)
	p.metrics.RecordRun(ctx, string(st.Outcome()), st.Elapsed)

	if p.tracingEnabled {
		p.spans.EndSpanWithError(runSpan, runErr)
	}

	durationMs := float64(st.Elapsed.Milliseconds())
	if runErr != nil {
		stage := ""
		if failed, ok := st.FailedStage(); ok {
			stage = string(failed)
		}
		observability.LogRunError(p.logger, st.RunID, stage, runErr, durationMs)
	} else {
		observability.LogRunComplete(p.logger, st.RunID, string(st.Outcome()), durationMs)
	}

	return st, runErr
}

// execute walks the transition table. The snapshot is returned in every
// branch so callers always see partial results.
func (p *Pipeline) execute(ctx context.Context, st *State, start time.Time, cfg *runConfig) (*State, error) {
	for phase := transitions[PhaseInit]; !phase.Terminal(); phase = transitions[phase] {
		stage := stageFor[phase]

		// Cooperative cancellation, checked at each stage boundary.
		select {
		case <-ctx.Done():
			st.Phase = PhaseFailed
			return st, &CancellationError{Stage: stage, Cause: context.Cause(ctx)}
		default:
		}

		st.Phase = phase
		observability.LogStageStart(p.logger, string(stage))
		p.notify(ctx, cfg.notifier, stage, StatusStarted, time.Since(start))

		stageCtx := ctx
		var stageSpan trace.Span
		if p.tracingEnabled {
			stageCtx, stageSpan = p.spans.StartStageSpan(ctx, string(stage))
		}

		stageStart := time.Now()
		err := p.invokeStage(stageCtx, stage, st)
		stageDuration := time.Since(stageStart)
		st.StageTimings[stage] = stageDuration

		p.metrics.RecordStageExecution(stageCtx, string(stage), stageDuration, err)
		if p.tracingEnabled {
			p.spans.EndSpanWithError(stageSpan, err)
		}

		if err != nil {
			kind := KindOf(err)
			st.appendError(stage, kind, err)
			p.notify(ctx, cfg.notifier, stage, StatusFailed, stageDuration)

			if stage == StageImage {
				// Best-effort stage: record the failure and keep
				// following the success path to Done.
				observability.LogStageDegraded(p.logger, string(stage), err)
				continue
			}

			observability.LogStageError(p.logger, string(stage), err)
			st.Phase = PhaseFailed
			return st, &PipelineError{Stage: stage, Kind: kind, Err: err}
		}

		if stage == StageImage && st.Image != nil {
			observability.LogArtifactSaved(p.logger, st.Image.Path, st.Image.FileSizeBytes)
			p.metrics.RecordArtifact(ctx, st.Image.FileSizeBytes)
		}

		observability.LogStageComplete(p.logger, string(stage), float64(stageDuration.Milliseconds()))
		p.notify(ctx, cfg.notifier, stage, StatusSucceeded, stageDuration)
	}

	st.Phase = PhaseDone
	return st, nil
}

// invokeStage dispatches to the stage's invoker and records its output.
// Results are populated strictly in pipeline order: each request is
// built from the previous stage's validated output.
func (p *Pipeline) invokeStage(ctx context.Context, stage Stage, st *State) error {
	switch stage {
	case StageResearch:
		res, err := p.research.Invoke(ctx, ResearchRequest{
			Topic:   st.Topic,
			Context: fmt.Sprintf("Target platform: %s, Tone: %s", st.Platform, st.Tone),
		})
		if err != nil {
			return err
		}
		st.Research = res
		return nil

	case StageContent:
		res, err := p.content.Invoke(ctx, ContentRequest{
			Research: *st.Research,
			Platform: st.Platform,
			Tone:     st.Tone,
		})
		if err != nil {
			return err
		}
		st.Content = res
		return nil

	case StageImage:
		res, err := p.image.Invoke(ctx, ImageRequest{
			Content: *st.Content,
			Topic:   st.Topic,
			Style:   p.imageStyle,
			Size:    p.imageSize,
		})
		if err != nil {
			return err
		}
		st.Image = res
		return nil
	}
	return fmt.Errorf("unknown stage: %s", stage)
}

// notify delivers one progress notification. Delivery is fire-and-forget:
// panics are recovered and logged, never surfaced as pipeline errors.
func (p *Pipeline) notify(ctx context.Context, n Notifier, stage Stage, status Status, elapsed time.Duration) {
	if n == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			observability.LogNotifierPanic(p.logger, string(stage), r)
		}
	}()
	n.Notify(ctx, stage, status, elapsed)
}
