package model

import "time"

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error
	// PrepareStep runs once per step while the pipeline is built.
	PrepareStep(parentStep, step *StepInfo) error

	pipelineRunOption

	// Finish runs when the pipeline is closed.
	Finish() error
}

// pipelineRunOption defines the interface for options observing runs.
type pipelineRunOption interface {
	// OnRunStart runs before the first step of a run.
	OnRunStart(run *RunInfo) error
	// OnToolCall runs everytime a step gets the result of a tool call.
	OnToolCall(run *RunInfo, step *StepInfo, call ToolCallInfo) error
	// OnStepOutput runs everytime a step writes its output slot.
	OnStepOutput(run *RunInfo, parentStep, step *StepInfo, computationDuration time.Duration) error
	// OnStepError runs when a step fails. The run stops afterwards.
	OnStepError(run *RunInfo, step *StepInfo, err error) error
	// OnRunEnd runs after the last step or the failing step.
	OnRunEnd(run *RunInfo, status Status, totalDuration time.Duration) error
}
