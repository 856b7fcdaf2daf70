package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/food-assistant/pkg/llm"
	"github.com/askiada/food-assistant/pkg/pipeline"
	"github.com/askiada/food-assistant/pkg/pipeline/logger"
)

type state struct {
	query  string
	recipe pipeline.Slot
	final  pipeline.Slot
}

func (s *state) Query() string { return s.query }

func (s *state) Slot(name string) (*pipeline.Slot, bool) {
	switch name {
	case "recipe_result":
		return &s.recipe, true
	case "final_response":
		return &s.final, true
	}

	return nil, false
}

func readRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		record := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		records = append(records, record)
	}

	return records
}

func TestPipelineLogger(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		failFinal bool
		expected  []string
	}{
		"completed": {
			expected: []string{"step added", "step added", "run started", "tool called", "step completed", "step completed", "run finished"},
		},
		"failed": {
			failFinal: true,
			expected:  []string{"step added", "step added", "run started", "tool called", "step completed", "step failed", "run finished"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			tool := llm.NewTool(llm.ToolSpec{Name: "get_recipe_details", Param: "dish_name"}, func(context.Context, string) map[string]any {
				return llm.Failure("Recipe not found in the local database.")
			})
			gen := llm.GeneratorFunc(func(_ context.Context, req llm.Request) (llm.Response, error) {
				if len(req.Tools) > 0 && len(req.Messages) == 1 {
					return llm.Response{ToolCalls: []llm.ToolCall{{Name: "get_recipe_details", Args: map[string]any{"dish_name": "tofu"}}}}, nil
				}
				if tc.failFinal && len(req.Tools) == 0 {
					return llm.Response{}, errors.New("unavailable")
				}

				return llm.Response{Text: "ok"}, nil
			})

			pipe, err := pipeline.New("food", gen, func(q string) pipeline.State { return &state{query: q} }, logger.PipelineLogger(log))
			require.NoError(t, err)
			_, err = pipeline.AddStep(pipe, "recipe", "recipe_result", "{query}", pipeline.StepTools(tool))
			require.NoError(t, err)
			_, err = pipeline.AddStep(pipe, "final", "final_response", "{recipe_result}")
			require.NoError(t, err)

			run, _ := pipe.Run(context.Background(), "tofu")

			records := readRecords(t, &buf)
			msgs := make([]string, len(records))
			for i, r := range records {
				msgs[i] = r["msg"].(string)
			}
			assert.Equal(t, tc.expected, msgs)

			toolRecord := records[3]
			assert.Equal(t, "WARN", toolRecord["level"])
			assert.Equal(t, "get_recipe_details", toolRecord["tool"])
			assert.Equal(t, "tofu", toolRecord["argument"])
			assert.Equal(t, run.ID(), toolRecord["run_id"])

			end := records[len(records)-1]
			assert.Equal(t, run.Status().String(), end["status"])
		})
	}
}
