package measure

import (
	"time"

	"github.com/askiada/food-assistant/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error {
	pm.AddMetric(model.StartStep.Name)
	pm.AddMetric(model.EndStep.Name)

	return nil
}

func (pm *pipelineMeasure) PrepareStep(_, step *model.StepInfo) error {
	pm.AddMetric(step.Name)

	return nil
}

func (pm *pipelineMeasure) OnRunStart(*model.RunInfo) error {
	return nil
}

func (pm *pipelineMeasure) OnToolCall(_ *model.RunInfo, step *model.StepInfo, call model.ToolCallInfo) error {
	pm.AddMetric(step.Name).AddToolCall(call.Name, call.Duration, call.Failed)

	return nil
}

func (pm *pipelineMeasure) OnStepOutput(_ *model.RunInfo, _, step *model.StepInfo, computationDuration time.Duration) error {
	pm.AddMetric(step.Name).AddDuration(computationDuration)

	return nil
}

func (pm *pipelineMeasure) OnStepError(_ *model.RunInfo, step *model.StepInfo, _ error) error {
	pm.AddMetric(step.Name).AddFailure()

	return nil
}

// OnRunEnd records whole runs under the end step.
func (pm *pipelineMeasure) OnRunEnd(_ *model.RunInfo, status model.Status, totalDuration time.Duration) error {
	mt := pm.AddMetric(model.EndStep.Name)
	mt.AddDuration(totalDuration)
	if status.Phase == model.Failed {
		mt.AddFailure()
	}

	return nil
}

func (pm *pipelineMeasure) Finish() error {
	return nil
}

// PipelineMeasure records step and tool durations into measure.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure}
}
