package pipeline_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/askiada/food-assistant/pkg/llm"
	"github.com/askiada/food-assistant/pkg/pipeline"
)

type testState struct {
	query     string
	recipe    pipeline.Slot
	nutrition pipeline.Slot
	allergen  pipeline.Slot
	final     pipeline.Slot
}

func newTestState(query string) pipeline.State {
	return &testState{query: query}
}

func (s *testState) Query() string {
	return s.query
}

func (s *testState) Slot(name string) (*pipeline.Slot, bool) {
	switch name {
	case "recipe_result":
		return &s.recipe, true
	case "nutrition_result":
		return &s.nutrition, true
	case "allergen_result":
		return &s.allergen, true
	case "final_response":
		return &s.final, true
	default:
		return nil, false
	}
}

// recordingGenerator answers every request with a reply computed from the first line of the instruction.
type recordingGenerator struct {
	mu       sync.Mutex
	requests []llm.Request
	reply    func(req llm.Request) (llm.Response, error)
}

func (g *recordingGenerator) Generate(_ context.Context, req llm.Request) (llm.Response, error) {
	g.mu.Lock()
	copied := req
	copied.Messages = append([]llm.Message(nil), req.Messages...)
	g.requests = append(g.requests, copied)
	g.mu.Unlock()

	return g.reply(req)
}

func (g *recordingGenerator) instructions() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]string, len(g.requests))
	for i, req := range g.requests {
		out[i] = req.Instruction
	}

	return out
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")

	return line
}

// echoGenerator returns "<first line>: done" for every instruction.
func echoGenerator() *recordingGenerator {
	return &recordingGenerator{
		reply: func(req llm.Request) (llm.Response, error) {
			return llm.Response{Text: firstLine(req.Instruction) + ": done"}, nil
		},
	}
}

func lastToolResults(req llm.Request) []llm.ToolResult {
	if len(req.Messages) == 0 {
		return nil
	}

	return req.Messages[len(req.Messages)-1].ToolResults
}

func newFoodPipeline(t *testing.T, gen llm.Generator, tools ...llm.Tool) *pipeline.Pipeline {
	t.Helper()

	pipe, err := pipeline.New("food", gen, newTestState)
	if err != nil {
		t.Fatal(err)
	}
	addTestSteps(t, pipe, tools...)

	return pipe
}

func addTestSteps(t *testing.T, pipe *pipeline.Pipeline, tools ...llm.Tool) {
	t.Helper()

	steps := []struct {
		name, output, instruction string
		opts                      []pipeline.StepOption
	}{
		{"recipe", "recipe_result", "recipe\nfind {query}", []pipeline.StepOption{pipeline.StepTools(tools...)}},
		{"nutrition", "nutrition_result", "nutrition\n{recipe_result}", nil},
		{"allergen", "allergen_result", "allergen\n{recipe_result}", nil},
		{"final", "final_response", "final\n{recipe_result}|{nutrition_result}|{allergen_result}", nil},
	}
	for _, s := range steps {
		_, err := pipeline.AddStep(pipe, s.name, s.output, s.instruction, s.opts...)
		if err != nil {
			t.Fatal(err)
		}
	}
}
