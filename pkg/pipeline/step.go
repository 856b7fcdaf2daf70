package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/food-assistant/pkg/llm"
	"github.com/askiada/food-assistant/pkg/pipeline/model"
)

// Step is a generation step of a pipeline. It is immutable once added.
type Step struct {
	details    *model.StepInfo
	template   *Template
	tools      map[string]llm.Tool
	specs      []llm.ToolSpec
	concurrent int
	maxRounds  int
}

// Details returns the description of the step.
func (s *Step) Details() *model.StepInfo {
	return s.details
}

// Template returns the instruction of the step.
func (s *Step) Template() *Template {
	return s.template
}

func newStep(name, output, instruction string, index int, opts ...StepOption) *Step {
	step := &Step{
		template:   ParseTemplate(instruction),
		tools:      make(map[string]llm.Tool),
		concurrent: defaultToolConcurrency,
		maxRounds:  defaultMaxToolRounds,
	}
	for _, opt := range opts {
		opt(step)
	}
	if step.concurrent <= 0 {
		step.concurrent = 1
	}

	toolNames := make([]string, len(step.specs))
	for i, spec := range step.specs {
		toolNames[i] = spec.Name
	}
	step.details = &model.StepInfo{
		Name:   name,
		Index:  index,
		Output: output,
		Inputs: step.template.Slots(),
		Tools:  toolNames,
	}

	return step
}

// execute runs the generation loop and returns the text to write in the output slot.
func (s *Step) execute(ctx context.Context, gen llm.Generator, run *Run, opts []model.PipelineOption) (string, error) {
	req := llm.Request{
		Instruction: s.template.Resolve(run.state),
		Messages:    []llm.Message{llm.UserText(run.state.Query())},
		Tools:       s.specs,
	}

	for round := 0; ; round++ {
		resp, err := gen.Generate(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return "", errors.Wrap(ctx.Err(), "generation interrupted")
			}

			return "", &UpstreamError{Err: err}
		}

		if resp.Final() {
			if strings.TrimSpace(resp.Text) == "" {
				return "", ErrEmptyOutput
			}

			return resp.Text, nil
		}

		if round >= s.maxRounds {
			return "", ErrToolRoundsExceeded
		}

		results, infos, err := s.callTools(ctx, resp.ToolCalls)
		if err != nil {
			return "", err
		}
		for _, info := range infos {
			for _, opt := range opts {
				err := opt.OnToolCall(run.info, s.details, info)
				if err != nil {
					return "", errors.Wrap(err, "unable to run tool call function")
				}
			}
		}

		req.Messages = append(req.Messages,
			llm.Message{Role: llm.RoleModel, Text: resp.Text, ToolCalls: resp.ToolCalls},
			llm.Message{Role: llm.RoleUser, ToolResults: results},
		)
	}
}

// callTools runs every requested call and waits for all of them.
// Results keep the order of the calls.
func (s *Step) callTools(ctx context.Context, calls []llm.ToolCall) ([]llm.ToolResult, []model.ToolCallInfo, error) {
	results := make([]llm.ToolResult, len(calls))
	infos := make([]model.ToolCallInfo, len(calls))

	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(s.concurrent)

	for idx, call := range calls {
		errGrp.Go(func() error {
			start := time.Now()
			payload, arg := s.invoke(dCtx, call)
			results[idx] = llm.ToolResult{CallID: call.ID, Name: call.Name, Payload: payload}
			infos[idx] = model.ToolCallInfo{
				Name:     call.Name,
				Argument: arg,
				Failed:   payload["status"] != "success",
				Duration: time.Since(start),
			}

			return dCtx.Err()
		})
	}

	err := errGrp.Wait()
	if err != nil {
		return nil, nil, errors.Wrap(err, "tool calls interrupted")
	}

	return results, infos, nil
}

func (s *Step) invoke(ctx context.Context, call llm.ToolCall) (map[string]any, string) {
	tool, ok := s.tools[call.Name]
	if !ok {
		return llm.Failure("unknown tool " + call.Name), ""
	}
	arg, ok := llm.Argument(tool.Spec(), call)
	if !ok {
		return llm.Failure("missing argument " + tool.Spec().Param), ""
	}

	return tool.Invoke(ctx, arg), arg
}
