package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/food-assistant/internal/recipestore"
	"github.com/askiada/food-assistant/pkg/lookup"
)

func newRecipesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recipes",
		Aliases: []string{"r"},
		Short:   "Manage the recipe database",
	}
	cmd.AddCommand(newRecipesImportCmd(a), newRecipesSearchCmd(a))

	return cmd
}

func newRecipesImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "import [csv file]",
		Short:   "Import recipes from a CSV file with Title, Ingredients and Instructions columns",
		Example: `  food-assistant recipes import 13k-recipes.csv`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "unable to open csv")
			}
			defer f.Close()

			store, err := recipestore.Create(a.cfg.Recipes.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.ImportCSV(cmd.Context(), f)
			if err != nil {
				return err
			}
			total, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			a.log.Info("recipes imported", "file", args[0], "imported", n, "total", total, "db", a.cfg.Recipes.DBPath)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d recipes, %d in %s\n", n, total, a.cfg.Recipes.DBPath)

			return nil
		},
	}
}

func newRecipesSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search [dish name]",
		Short: "Run the recipe lookup the model uses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipes, store, err := a.recipeLookup()
			if err != nil {
				return err
			}
			defer store.Close()

			res := recipes.Lookup(cmd.Context(), strings.Join(args, " "))

			return printResult(cmd.OutOrStdout(), res)
		},
	}
}

// printResult writes the value as indented JSON, or returns the failure.
func printResult[T any](w io.Writer, res lookup.Result[T]) error {
	if !res.OK() {
		return res.Failure()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return errors.Wrap(enc.Encode(res.Value()), "unable to print result")
}
