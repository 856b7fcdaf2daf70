package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/food-assistant/pkg/pipeline"
)

func TestSlotWriteOnce(t *testing.T) {
	t.Parallel()

	var slot pipeline.Slot
	_, ok := slot.Get()
	assert.False(t, ok)
	assert.False(t, slot.Written())

	require.NoError(t, slot.Set(""))
	assert.True(t, slot.Written())

	err := slot.Set("again")
	require.ErrorIs(t, err, pipeline.ErrSlotAlreadyWritten)

	value, ok := slot.Get()
	assert.True(t, ok)
	assert.Empty(t, value)
}
