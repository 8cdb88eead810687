package postflow

import (
	"time"
)

// Research output bounds. Fewer or more bullet points than this range is
// a schema violation, not a soft warning.
const (
	MinResearchBullets = 5
	MaxResearchBullets = 7
)

// Defaults for image generation requests.
const (
	DefaultImageStyle = "photorealistic"
	DefaultImageSize  = "1024x1024"
)

// ResearchResult is the validated output of the research stage.
type ResearchResult struct {
	// Topic echoes the researched topic.
	Topic string `json:"topic"`
	// BulletPoints holds 5-7 factual statements about the topic.
	BulletPoints []string `json:"bullet_points"`
}

// ContentResult is the validated output of the content stage.
type ContentResult struct {
	// Text is the generated platform-specific content.
	Text string `json:"text"`
	// Platform the text was optimized for.
	Platform Platform `json:"platform"`
	// WordCount is recomputed from Text, never trusted from upstream.
	WordCount int `json:"word_count"`
}

// ImageResult is the validated output of the image stage.
type ImageResult struct {
	// Path is an opaque reference resolvable by the surrounding
	// application into the persisted artifact. Stable for the lifetime
	// of one pipeline result.
	Path string `json:"path"`
	// Prompt is the generation prompt derived from the content.
	Prompt string `json:"prompt"`
	// Size is the image dimensions requested.
	Size string `json:"size"`
	// FileSizeBytes is the size of the persisted artifact.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// StageError records one stage failure. Entries are append-only.
type StageError struct {
	Stage   Stage  `json:"stage"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Outcome distinguishes the three user-visible results of a run.
type Outcome string

// Run outcomes.
const (
	// OutcomeFull - all three stages succeeded.
	OutcomeFull Outcome = "full"
	// OutcomeDegraded - content was produced but the image stage failed.
	OutcomeDegraded Outcome = "degraded"
	// OutcomeFailed - a load-bearing stage failed.
	OutcomeFailed Outcome = "failed"
)

// State is the workflow record threaded through one pipeline execution.
// It is owned exclusively by that execution and mutated only by the
// orchestrator; stage results are populated strictly in pipeline order.
type State struct {
	// RunID uniquely identifies the execution.
	RunID string `json:"run_id"`

	// Inputs, immutable once set.
	Topic    string   `json:"topic"`
	Platform Platform `json:"platform"`
	Tone     Tone     `json:"tone"`

	// Phase is the machine position at snapshot time.
	Phase Phase `json:"phase"`

	// Stage outputs. Content is never set while Research is nil;
	// Image may remain nil even when the run reaches Done.
	Research *ResearchResult `json:"research,omitempty"`
	Content  *ContentResult  `json:"content,omitempty"`
	Image    *ImageResult    `json:"image,omitempty"`

	// Errors accumulates stage failures in occurrence order.
	Errors []StageError `json:"errors,omitempty"`

	// Timing metadata.
	StartedAt    time.Time               `json:"started_at"`
	Elapsed      time.Duration           `json:"elapsed"`
	StageTimings map[Stage]time.Duration `json:"stage_timings,omitempty"`
}

// newState creates the initial state for one run.
func newState(runID, topic string, platform Platform, tone Tone) *State {
	return &State{
		RunID:        runID,
		Topic:        topic,
		Platform:     platform,
		Tone:         tone,
		Phase:        PhaseInit,
		StartedAt:    time.Now().UTC(),
		StageTimings: make(map[Stage]time.Duration),
	}
}

// appendError records a stage failure. Entries are never removed.
func (s *State) appendError(stage Stage, kind Kind, err error) {
	s.Errors = append(s.Errors, StageError{
		Stage:   stage,
		Kind:    kind,
		Message: err.Error(),
	})
}

// Outcome classifies the snapshot without exposing internal shape.
func (s *State) Outcome() Outcome {
	if s.Phase == PhaseFailed {
		return OutcomeFailed
	}
	if s.Phase == PhaseDone && s.Image == nil {
		return OutcomeDegraded
	}
	if s.Phase == PhaseDone {
		return OutcomeFull
	}
	// Snapshot taken before a terminal phase.
	return OutcomeFailed
}

// FailedStage returns the stage that stopped a failed run.
// ok is false when the run did not fail.
func (s *State) FailedStage() (Stage, bool) {
	if s.Phase != PhaseFailed || len(s.Errors) == 0 {
		return "", false
	}
	return s.Errors[len(s.Errors)-1].Stage, true
}

// ErrorsFor returns the recorded failures for one stage.
func (s *State) ErrorsFor(stage Stage) []StageError {
	var out []StageError
	for _, e := range s.Errors {
		if e.Stage == stage {
			out = append(out, e)
		}
	}
	return out
}
