package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/askiada/food-assistant/pkg/lookup"
)

func newNutritionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "nutrition [food or barcode]",
		Aliases: []string{"n"},
		Short:   "Run the nutrition lookup the model uses",
		Example: `  food-assistant nutrition "oat milk"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cache, err := a.nutritionClient()
			if err != nil {
				return err
			}
			defer cache.Close()

			return printResult(cmd.OutOrStdout(), client.Lookup(cmd.Context(), strings.Join(args, " ")))
		},
	}
}

func newLookupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Run the weather and time lookups without a model",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "geocode [city]",
			Short: "Resolve a city to coordinates and time zone",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printResult(cmd.OutOrStdout(), a.weatherClient().Geocode(cmd.Context(), strings.Join(args, " ")))
			},
		},
		reportCmd("weather [city]", "Print the current weather report of a city", func(ctx context.Context, city string) lookup.Result[string] {
			return a.weatherClient().Weather(ctx, city)
		}),
		reportCmd("time [city]", "Print the current local time of a city", func(ctx context.Context, city string) lookup.Result[string] {
			return a.weatherClient().CurrentTime(ctx, city)
		}),
	)

	return cmd
}

func reportCmd(use, short string, report func(ctx context.Context, city string) lookup.Result[string]) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := report(cmd.Context(), strings.Join(args, " "))
			if !res.OK() {
				return res.Failure()
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), res.Value())

			return err
		},
	}
}
