package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/askiada/food-assistant/pkg/pipeline/model"
)

func TestStatusString(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		status   model.Status
		expected string
	}{
		"not started": {status: model.Status{Phase: model.NotStarted}, expected: "not_started"},
		"running":     {status: model.Status{Phase: model.Running, StepIndex: 2}, expected: "running(2)"},
		"completed":   {status: model.Status{Phase: model.Completed, StepIndex: 3}, expected: "completed"},
		"failed":      {status: model.Status{Phase: model.Failed, StepIndex: 1}, expected: "failed(1)"},
		"unknown":     {status: model.Status{Phase: model.Phase(9)}, expected: "phase(9)"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, tc.status.String())
		})
	}
}

func TestPhaseTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, model.NotStarted.Terminal())
	assert.False(t, model.Running.Terminal())
	assert.True(t, model.Completed.Terminal())
	assert.True(t, model.Failed.Terminal())
}
