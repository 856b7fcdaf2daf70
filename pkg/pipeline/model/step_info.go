package model

import "time"

// StepInfo describes a step of a pipeline.
type StepInfo struct {
	Name string
	// Index is the position of the step in the pipeline. The start and end markers use -1.
	Index int
	// Output is the slot written by the step.
	Output string
	// Inputs are the slots the step instruction reads.
	Inputs []string
	// Tools are the names of the tools the step may call.
	Tools []string
}

var (
	StartStep = &StepInfo{Name: "start", Index: -1, Output: "query"}
	EndStep   = &StepInfo{Name: "end", Index: -1}
)

// RunInfo describes one execution of a pipeline.
type RunInfo struct {
	ID        string
	Pipeline  string
	Query     string
	StartedAt time.Time
}

// ToolCallInfo describes a tool call made by a step.
type ToolCallInfo struct {
	Name     string
	Argument string
	// Failed reports whether the tool returned an error payload.
	Failed   bool
	Duration time.Duration
}
