// Package postflow provides the content generation pipeline orchestrator.
package postflow

import (
	"errors"
	"fmt"
)

// Kind classifies invocation failures.
type Kind string

// Failure kinds, in order of detection.
const (
	// KindInvalidInput indicates a request violated a stage's input
	// contract. Raised before any external call is made.
	KindInvalidInput Kind = "invalid_input"

	// KindUpstream indicates the external capability was unreachable
	// or returned an error.
	KindUpstream Kind = "upstream_failure"

	// KindSchema indicates the capability responded but its output does
	// not conform to the stage's declared schema.
	KindSchema Kind = "schema_violation"
)

// Sentinel errors for pipeline construction and execution.
var (
	// ErrNilInvoker indicates New() was called with a nil stage invoker.
	ErrNilInvoker = errors.New("stage invoker cannot be nil")

	// ErrNilContext indicates Run() was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")
)

// InvocationError is returned by stage invokers when a single capability
// call fails. The Kind field drives the orchestrator's continuation
// decision.
type InvocationError struct {
	// Stage is the stage whose invoker failed.
	Stage Stage
	// Kind classifies the failure.
	Kind Kind
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s invocation: %s: %v", e.Stage, e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *InvocationError) Unwrap() error {
	return e.Err
}

// PipelineError is the terminal failure surfaced by Run when a
// load-bearing stage (research or content) fails.
type PipelineError struct {
	// Stage is the stage at which the pipeline failed.
	Stage Stage
	// Kind classifies the failure that stopped the pipeline.
	Kind Kind
	// Err is the underlying invocation error.
	Err error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed at %s: %s: %v", e.Stage, e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// CancellationError is returned when cancellation is observed at a stage
// boundary. The snapshot returned alongside it holds everything produced
// before the boundary.
type CancellationError struct {
	// Stage is the stage that was about to execute.
	Stage Stage
	// Cause is the underlying cancellation cause
	// (context.Canceled or context.DeadlineExceeded).
	Cause error
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	return fmt.Sprintf("cancelled before stage %s: %v", e.Stage, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CancellationError) Unwrap() error {
	return e.Cause
}

// KindOf extracts the failure kind from an error chain.
// Errors that carry no InvocationError are treated as upstream failures.
func KindOf(err error) Kind {
	var inv *InvocationError
	if errors.As(err, &inv) {
		return inv.Kind
	}
	return KindUpstream
}
