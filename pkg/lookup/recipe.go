package lookup

import (
	"context"
	"log/slog"
)

const recipeNotFound = "Recipe not found in the local database."

// Recipe is a record of the local recipe store.
type Recipe struct {
	Title        string `json:"title"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
}

// RecipeStore finds the first recipe whose title contains fragment, ignoring case.
type RecipeStore interface {
	FindByTitle(ctx context.Context, fragment string) (Recipe, bool, error)
}

// RecipeLookup searches the local recipe store.
type RecipeLookup struct {
	store RecipeStore
	log   *slog.Logger
}

func NewRecipeLookup(store RecipeStore, log *slog.Logger) *RecipeLookup {
	if log == nil {
		log = slog.Default()
	}

	return &RecipeLookup{store: store, log: log}
}

func (rl *RecipeLookup) Lookup(ctx context.Context, dishName string) Result[Recipe] {
	recipe, ok, err := rl.store.FindByTitle(ctx, dishName)
	if err != nil {
		rl.log.Debug("recipe lookup failed", "dish_name", dishName, "error", err)

		return Fail[Recipe](Transport, "Database error: %v", err)
	}
	if !ok {
		return Fail[Recipe](NotFound, recipeNotFound)
	}

	return Ok(recipe)
}
