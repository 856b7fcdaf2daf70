package commands

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/askiada/food-assistant/internal/logging"
	"github.com/askiada/food-assistant/internal/render"
	"github.com/askiada/food-assistant/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive food assistant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			// the terminal belongs to bubbletea, logs go to a file or nowhere.
			a.log = logging.Discard()
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
				if err != nil {
					return err
				}
				defer f.Close()

				a.log, err = logging.New(a.cfg.Log.Level, a.cfg.Log.Format, f)
				if err != nil {
					return err
				}
			}

			pipe, cleanup, err := a.foodPipeline(cmd.Context(), buildOptions{})
			if err != nil {
				return err
			}
			defer func() {
				cerr := cleanup.Close()
				if err == nil {
					err = cerr
				}
			}()

			renderer := render.New(cmd.OutOrStdout())
			model := tui.NewModel(cmd.Context(), pipe, renderer)
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()

			return err
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file")

	return cmd
}
