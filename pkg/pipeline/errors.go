package pipeline

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet   = errors.New("p must be set")
	ErrGeneratorMustBeSet  = errors.New("generator must be set")
	ErrStateMustBeSet      = errors.New("state factory must be set")
	ErrNoSteps             = errors.New("pipeline has no steps")
	ErrUnknownSlot         = errors.New("unknown slot")
	ErrSlotAlreadyOwned    = errors.New("slot is already written by another step")
	ErrSlotReadBeforeWrite = errors.New("slot is read before it is written")
	ErrSlotAlreadyWritten  = errors.New("slot already written")
	ErrUpstreamUnavailable = errors.New("generation capability unavailable")
	ErrToolRoundsExceeded  = errors.New("exceeded maximum tool call rounds")
	ErrEmptyOutput         = errors.New("generator returned no text")
)

// StepError reports the step that stopped a run.
type StepError struct {
	Err   error
	Step  string
	Index int
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d %s: %v", e.Index, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// UpstreamError wraps a failure of the generator itself.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return ErrUpstreamUnavailable.Error() + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrUpstreamUnavailable) hold for any UpstreamError.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable //nolint:errorlint // sentinel comparison
}
