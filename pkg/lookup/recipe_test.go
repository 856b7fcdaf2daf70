package lookup_test

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/food-assistant/pkg/lookup"
)

type memoryStore struct {
	recipes []lookup.Recipe
	err     error
}

func (s *memoryStore) FindByTitle(_ context.Context, fragment string) (lookup.Recipe, bool, error) {
	if s.err != nil {
		return lookup.Recipe{}, false, s.err
	}
	for _, r := range s.recipes {
		if strings.Contains(strings.ToLower(r.Title), strings.ToLower(fragment)) {
			return r, true, nil
		}
	}

	return lookup.Recipe{}, false, nil
}

var classicPancakes = lookup.Recipe{
	Title:        "Classic Pancakes",
	Ingredients:  "['1 cup flour', '1 egg', '1 cup milk']",
	Instructions: "Whisk everything and cook on a hot griddle.",
}

func TestRecipeLookup(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		store    *memoryStore
		dish     string
		expected lookup.Result[lookup.Recipe]
	}{
		"found": {
			store:    &memoryStore{recipes: []lookup.Recipe{classicPancakes}},
			dish:     "pancakes",
			expected: lookup.Ok(classicPancakes),
		},
		"case insensitive": {
			store:    &memoryStore{recipes: []lookup.Recipe{classicPancakes}},
			dish:     "CLASSIC",
			expected: lookup.Ok(classicPancakes),
		},
		"not found": {
			store:    &memoryStore{recipes: []lookup.Recipe{classicPancakes}},
			dish:     "ramen",
			expected: lookup.Fail[lookup.Recipe](lookup.NotFound, "Recipe not found in the local database."),
		},
		"empty store": {
			store:    &memoryStore{},
			dish:     "pancakes",
			expected: lookup.Fail[lookup.Recipe](lookup.NotFound, "Recipe not found in the local database."),
		},
		"store error": {
			store:    &memoryStore{err: errors.New("no such table: recipes")},
			dish:     "pancakes",
			expected: lookup.Fail[lookup.Recipe](lookup.Transport, "Database error: no such table: recipes"),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := lookup.NewRecipeLookup(tc.store, nil).Lookup(context.Background(), tc.dish)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestRecipeTool(t *testing.T) {
	t.Parallel()

	tool := lookup.RecipeTool(lookup.NewRecipeLookup(&memoryStore{recipes: []lookup.Recipe{classicPancakes}}, nil))
	assert.Equal(t, "get_recipe_details", tool.Spec().Name)
	assert.Equal(t, "dish_name", tool.Spec().Param)

	got := tool.Invoke(context.Background(), "pancakes")
	require.Equal(t, "success", got["status"])
	assert.Equal(t, classicPancakes, got["result"])

	got = tool.Invoke(context.Background(), "ramen")
	assert.Equal(t, map[string]any{"status": "error", "error_message": "Recipe not found in the local database."}, got)
}
