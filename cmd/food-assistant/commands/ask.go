package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/askiada/food-assistant/internal/render"
	"github.com/askiada/food-assistant/pkg/pipeline"
)

type askFlags struct {
	raw  bool
	draw string
}

func (f *askFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.raw, "raw", false, "print the answer as markdown instead of rendering it")
	cmd.Flags().StringVar(&f.draw, "draw", "", "write the pipeline graph with measured durations to this DOT file")
}

func newAskCmd(a *app) *cobra.Command {
	flags := &askFlags{}
	cmd := &cobra.Command{
		Use:     "ask [question]",
		Aliases: []string{"a"},
		Short:   "Ask the food assistant for a recipe with nutrition and allergen advice",
		Example: `  food-assistant ask "pancakes without eggs"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipe, cleanup, err := a.foodPipeline(cmd.Context(), buildOptions{drawPath: flags.draw})
			if err != nil {
				return err
			}

			return runOnce(cmd, pipe, cleanup, strings.Join(args, " "), flags.raw)
		},
	}
	flags.register(cmd)

	return cmd
}

func newWeatherCmd(a *app) *cobra.Command {
	flags := &askFlags{}
	cmd := &cobra.Command{
		Use:     "weather [question]",
		Aliases: []string{"w"},
		Short:   "Ask for the current weather or time in a city",
		Example: `  food-assistant weather "what time is it in Tokyo?"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipe, cleanup, err := a.weatherPipeline(cmd.Context(), buildOptions{drawPath: flags.draw})
			if err != nil {
				return err
			}

			return runOnce(cmd, pipe, cleanup, strings.Join(args, " "), flags.raw)
		},
	}
	flags.register(cmd)

	return cmd
}

func runOnce(cmd *cobra.Command, pipe *pipeline.Pipeline, cleanup closers, query string, raw bool) (err error) {
	defer func() {
		cerr := cleanup.Close()
		if err == nil {
			err = cerr
		}
	}()

	answer, err := pipe.Execute(cmd.Context(), query)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !raw {
		answer = render.New(out).Render(answer)
	}
	_, err = fmt.Fprintln(out, answer)

	return err
}
