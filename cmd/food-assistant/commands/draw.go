package commands

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/food-assistant/pkg/llm"
)

var errOffline = errors.New("no model configured")

// offline lets the graph be drawn without credentials.
var offline = llm.GeneratorFunc(func(context.Context, llm.Request) (llm.Response, error) {
	return llm.Response{}, errOffline
})

func newDrawCmd(a *app) *cobra.Command {
	var (
		output string
		query  string
	)

	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Write the food pipeline graph as a DOT file",
		Long: `draw writes the step chain, the slots linking the steps and the tools of each step.
With --query the pipeline runs once first and the graph carries the measured durations.`,
		Example: `  food-assistant draw --output pipeline.dot && dot -Tsvg pipeline.dot > pipeline.svg`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := buildOptions{drawPath: output}
			if query == "" {
				opts.generator = offline
			}
			pipe, cleanup, err := a.foodPipeline(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if query != "" {
				_, err = pipe.Run(cmd.Context(), query)
				if err != nil {
					a.log.Warn("run failed, drawing partial measures", "error", err)
				}
			}

			err = cleanup.Close()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "pipeline drawn to", output)

			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "food_assistant.dot", "DOT file to write")
	cmd.Flags().StringVar(&query, "query", "", "run this query before drawing")

	return cmd
}
