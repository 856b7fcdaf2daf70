package pipeline

import (
	"context"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/askiada/food-assistant/pkg/llm"
	"github.com/askiada/food-assistant/pkg/pipeline/model"
)

// Pipeline is a fixed sequence of generation steps.
type Pipeline struct {
	name     string
	gen      llm.Generator
	newState func(query string) State
	probe    State
	steps    []*Step
	slots    graph.Graph[string, string]
	opts     []model.PipelineOption
}

// New creates a new pipeline. newState is called once per run to build a fresh state.
func New(name string, gen llm.Generator, newState func(query string) State, opts ...model.PipelineOption) (*Pipeline, error) {
	if gen == nil {
		return nil, ErrGeneratorMustBeSet
	}
	if newState == nil {
		return nil, ErrStateMustBeSet
	}

	pipe := &Pipeline{
		name:     name,
		gen:      gen,
		newState: newState,
		probe:    newState(""),
		slots:    graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles()),
		opts:     opts,
	}

	err := pipe.slots.AddVertex(QuerySlot)
	if err != nil {
		return nil, errors.Wrap(err, "unable to add query slot")
	}

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// Name returns the name of the pipeline.
func (p *Pipeline) Name() string {
	return p.name
}

// Steps returns the steps in execution order.
func (p *Pipeline) Steps() []*Step {
	out := make([]*Step, len(p.steps))
	copy(out, p.steps)

	return out
}

// AddStep appends a step writing the output slot.
//
// Every placeholder of the instruction must name the query or a slot written by an earlier step, and the
// output slot must not be written by any other step.
func AddStep(p *Pipeline, name, output, instruction string, opts ...StepOption) (*Step, error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}

	step := newStep(name, output, instruction, len(p.steps), opts...)

	err := p.checkSlots(step.details)
	if err != nil {
		return nil, errors.Wrapf(err, "step %s", name)
	}

	err = p.slots.AddVertex(output)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to add slot %s", output)
	}
	for _, input := range step.details.Inputs {
		err := p.slots.AddEdge(input, output)
		if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return nil, errors.Wrapf(err, "unable to link slot %s to %s", input, output)
		}
	}

	parent := model.StartStep
	if len(p.steps) > 0 {
		parent = p.steps[len(p.steps)-1].details
	}
	for _, opt := range p.opts {
		err := opt.PrepareStep(parent, step.details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run prepare step function")
		}
	}

	p.steps = append(p.steps, step)

	return step, nil
}

func (p *Pipeline) checkSlots(details *model.StepInfo) error {
	if details.Output == QuerySlot {
		return errors.Wrap(ErrSlotAlreadyOwned, QuerySlot)
	}
	if _, ok := p.probe.Slot(details.Output); !ok {
		return errors.Wrap(ErrUnknownSlot, details.Output)
	}
	if _, err := p.slots.Vertex(details.Output); err == nil {
		return errors.Wrap(ErrSlotAlreadyOwned, details.Output)
	}

	for _, input := range details.Inputs {
		if input == details.Output {
			return errors.Wrap(ErrSlotReadBeforeWrite, input)
		}
		if _, err := p.slots.Vertex(input); err == nil {
			continue
		}
		if _, ok := p.probe.Slot(input); ok {
			return errors.Wrap(ErrSlotReadBeforeWrite, input)
		}

		return errors.Wrap(ErrUnknownSlot, input)
	}

	return nil
}

// SlotOrder returns the slots sorted so that every slot comes after the slots it is computed from.
func (p *Pipeline) SlotOrder() ([]string, error) {
	order, err := graph.StableTopologicalSort(p.slots, func(a, b string) bool {
		return p.slotIndex(a) < p.slotIndex(b)
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to sort slots")
	}

	return order, nil
}

func (p *Pipeline) slotIndex(slot string) int {
	for i, step := range p.steps {
		if step.details.Output == slot {
			return i
		}
	}

	return -1
}

// Execute runs the pipeline and returns the content of the last step's slot.
func (p *Pipeline) Execute(ctx context.Context, query string) (string, error) {
	run, err := p.Run(ctx, query)
	if err != nil {
		return "", err
	}

	out, _ := run.Output()

	return out, nil
}

// Run executes every step in order against a fresh state.
// On failure the returned run is Failed and the error is a *StepError when a step caused it.
func (p *Pipeline) Run(ctx context.Context, query string) (*Run, error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}

	run := &Run{
		info: &model.RunInfo{
			ID:        uuid.NewString(),
			Pipeline:  p.name,
			Query:     query,
			StartedAt: time.Now(),
		},
		state:  p.newState(query),
		status: model.Status{Phase: model.NotStarted},
	}

	if len(p.steps) == 0 {
		run.status = model.Status{Phase: model.Failed}

		return run, ErrNoSteps
	}

	for _, opt := range p.opts {
		err := opt.OnRunStart(run.info)
		if err != nil {
			return run, p.endRun(run, model.Status{Phase: model.Failed}, errors.Wrap(err, "unable to run start function"))
		}
	}

	parent := model.StartStep
	for idx, step := range p.steps {
		run.status = model.Status{Phase: model.Running, StepIndex: idx}

		err := p.runStep(ctx, run, parent, step)
		if err != nil {
			stepErr := &StepError{Err: err, Step: step.details.Name, Index: idx}
			for _, opt := range p.opts {
				_ = opt.OnStepError(run.info, step.details, stepErr)
			}

			return run, p.endRun(run, model.Status{Phase: model.Failed, StepIndex: idx}, stepErr)
		}

		parent = step.details
	}

	return run, p.endRun(run, model.Status{Phase: model.Completed, StepIndex: len(p.steps) - 1}, nil)
}

func (p *Pipeline) runStep(ctx context.Context, run *Run, parent *model.StepInfo, step *Step) error {
	start := time.Now()

	out, err := step.execute(ctx, p.gen, run, p.opts)
	if err != nil {
		return err
	}

	slot, ok := run.state.Slot(step.details.Output)
	if !ok {
		return errors.Wrap(ErrUnknownSlot, step.details.Output)
	}
	err = slot.Set(out)
	if err != nil {
		return errors.Wrap(err, step.details.Output)
	}

	for _, opt := range p.opts {
		err := opt.OnStepOutput(run.info, parent, step.details, time.Since(start))
		if err != nil {
			return errors.Wrap(err, "unable to run step output function")
		}
	}

	return nil
}

func (p *Pipeline) endRun(run *Run, status model.Status, runErr error) error {
	run.status = status
	if status.Phase == model.Completed {
		last := p.steps[len(p.steps)-1]
		run.output, _ = lookupSlot(run.state, last.details.Output)
	}

	for _, opt := range p.opts {
		err := opt.OnRunEnd(run.info, status, time.Since(run.info.StartedAt))
		if err != nil && runErr == nil {
			runErr = errors.Wrap(err, "unable to run end function")
			run.status = model.Status{Phase: model.Failed, StepIndex: status.StepIndex}
			run.output = ""
		}
	}

	return runErr
}

// Close finishes every option of the pipeline.
func (p *Pipeline) Close() error {
	for _, opt := range p.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}
