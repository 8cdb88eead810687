package postflow

// Stage identifies one capability invocation within the pipeline.
type Stage string

// Pipeline stages, in execution order.
const (
	StageResearch Stage = "research"
	StageContent  Stage = "content"
	StageImage    Stage = "image"
)

// Stages returns the fixed execution sequence. The topology is linear;
// there is no routing decision beyond continue-or-stop.
func Stages() []Stage {
	return []Stage{StageResearch, StageContent, StageImage}
}

// Status reports the progress of a stage to notifiers.
type Status string

// Stage progress statuses.
const (
	StatusStarted   Status = "started"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Phase is the orchestrator's state machine position.
type Phase string

// Machine phases. Done and Failed are terminal; Failed is reachable only
// from Researching and ContentGenerating.
const (
	PhaseInit              Phase = "init"
	PhaseResearching       Phase = "researching"
	PhaseContentGenerating Phase = "content_generating"
	PhaseImageGenerating   Phase = "image_generating"
	PhaseDone              Phase = "done"
	PhaseFailed            Phase = "failed"
)

// stageFor maps each working phase to the stage it executes.
var stageFor = map[Phase]Stage{
	PhaseResearching:       StageResearch,
	PhaseContentGenerating: StageContent,
	PhaseImageGenerating:   StageImage,
}

// transitions is the success path of the state machine.
var transitions = map[Phase]Phase{
	PhaseInit:              PhaseResearching,
	PhaseResearching:       PhaseContentGenerating,
	PhaseContentGenerating: PhaseImageGenerating,
	PhaseImageGenerating:   PhaseDone,
}

// Terminal returns true for phases with no outgoing transitions.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed
}
