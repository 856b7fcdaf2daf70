package pipeline

import "github.com/askiada/food-assistant/pkg/llm"

const (
	defaultToolConcurrency = 4
	defaultMaxToolRounds   = 10
)

type StepOption func(s *Step)

// StepTools exposes tools to the generator during the step.
func StepTools(tools ...llm.Tool) StepOption {
	return func(s *Step) {
		for _, tool := range tools {
			spec := tool.Spec()
			if _, ok := s.tools[spec.Name]; !ok {
				s.specs = append(s.specs, spec)
			}
			s.tools[spec.Name] = tool
		}
	}
}

// StepConcurrency bounds the number of tool calls of one round running at the same time.
func StepConcurrency(concurrent int) StepOption {
	return func(s *Step) {
		s.concurrent = concurrent
	}
}

// StepMaxToolRounds bounds the number of tool call rounds before the step fails.
func StepMaxToolRounds(rounds int) StepOption {
	return func(s *Step) {
		s.maxRounds = rounds
	}
}
