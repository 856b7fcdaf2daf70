package lookup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/askiada/food-assistant/pkg/lookup"
)

func TestResult(t *testing.T) {
	t.Parallel()

	ok := lookup.Ok("sunny")
	assert.True(t, ok.OK())
	assert.Equal(t, "sunny", ok.Value())
	assert.Nil(t, ok.Failure())

	failed := lookup.Fail[lookup.Place](lookup.NotFound, "City '%s' not found.", "Atlantis")
	assert.False(t, failed.OK())
	assert.Equal(t, lookup.Place{}, failed.Value())
	assert.Equal(t, &lookup.Failure{Kind: lookup.NotFound, Message: "City 'Atlantis' not found."}, failed.Failure())
	assert.Equal(t, "City 'Atlantis' not found.", failed.Failure().Error())

	passed := lookup.FailWith[string](failed.Failure())
	assert.Same(t, failed.Failure(), passed.Failure())
}

func TestKindString(t *testing.T) {
	t.Parallel()

	tcs := map[lookup.Kind]string{
		lookup.NotFound:  "not_found",
		lookup.Transport: "transport",
		lookup.Parse:     "parse",
		lookup.Kind(9):   "kind(9)",
	}
	for kind, expected := range tcs {
		assert.Equal(t, expected, kind.String())
	}
}
