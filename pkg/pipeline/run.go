package pipeline

import "github.com/askiada/food-assistant/pkg/pipeline/model"

// Run is one execution of a pipeline. It is owned by the goroutine that called Pipeline.Run.
type Run struct {
	info   *model.RunInfo
	state  State
	status model.Status
	output string
}

// ID returns the unique identifier of the run.
func (r *Run) ID() string {
	return r.info.ID
}

// Status returns the position of the run in its state machine.
func (r *Run) Status() model.Status {
	return r.status
}

// State returns the state of the run.
func (r *Run) State() State {
	return r.state
}

// Output returns the content of the last slot once the run is Completed.
func (r *Run) Output() (string, bool) {
	if r.status.Phase != model.Completed {
		return "", false
	}

	return r.output, true
}

// StepIndex returns the index of the step running, or the step that completed or failed the run.
func (r *Run) StepIndex() int {
	return r.status.StepIndex
}
