package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/food-assistant/pkg/pipeline/measure"
	"github.com/askiada/food-assistant/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m         measure.Measure
	startTime time.Time
	writers   map[string]string
	last      *model.StepInfo
}

func (pd *pipelineDrawer) New() error {
	err := pd.AddStep(model.StartStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start step to drawer")
	}
	err = pd.AddStep(model.EndStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end step to drawer")
	}
	pd.writers[model.StartStep.Output] = model.StartStep.Name

	return nil
}

// PrepareStep links the step to the steps writing the slots it reads.
func (pd *pipelineDrawer) PrepareStep(parentStep, step *model.StepInfo) error {
	err := pd.AddStep(step.Name)
	if err != nil {
		return err
	}
	for _, tool := range step.Tools {
		err := pd.AddTool(step.Name, tool)
		if err != nil {
			return err
		}
	}

	if len(step.Inputs) == 0 {
		err := pd.AddLink(parentStep.Name, step.Name, "")
		if err != nil {
			return err
		}
	}
	for _, input := range step.Inputs {
		writer, ok := pd.writers[input]
		if !ok {
			writer = parentStep.Name
		}
		err := pd.AddLink(writer, step.Name, input)
		if err != nil {
			return err
		}
	}

	pd.writers[step.Output] = step.Name
	pd.last = step

	return nil
}

func (pd *pipelineDrawer) OnRunStart(*model.RunInfo) error {
	return nil
}

func (pd *pipelineDrawer) OnToolCall(*model.RunInfo, *model.StepInfo, model.ToolCallInfo) error {
	return nil
}

func (pd *pipelineDrawer) OnStepOutput(*model.RunInfo, *model.StepInfo, *model.StepInfo, time.Duration) error {
	return nil
}

func (pd *pipelineDrawer) OnStepError(*model.RunInfo, *model.StepInfo, error) error {
	return nil
}

func (pd *pipelineDrawer) OnRunEnd(*model.RunInfo, model.Status, time.Duration) error {
	return nil
}

// Finish links the last step to the end and draws the graph.
func (pd *pipelineDrawer) Finish() error {
	if pd.last != nil {
		err := pd.AddLink(pd.last.Name, model.EndStep.Name, pd.last.Output)
		if err != nil {
			return err
		}
	}

	if pd.m != nil {
		err := pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	} else {
		err := pd.SetTotalTime(model.EndStep.Name, time.Since(pd.startTime))
		if err != nil {
			return errors.Wrap(err, "unable to set total time")
		}
	}

	err := pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer draws the pipeline when it is closed. measure may be nil.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{
		Drawer:    drawer,
		m:         measure,
		startTime: time.Now(),
		writers:   make(map[string]string),
	}
}
