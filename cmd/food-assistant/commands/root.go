// Package commands holds the cobra commands of the food-assistant binary.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/askiada/food-assistant/internal/config"
	"github.com/askiada/food-assistant/internal/logging"
)

// app is shared by every command. It is filled by the root pre-run hook.
type app struct {
	cfgFile string
	cfg     *config.Config
	log     *slog.Logger
}

// NewRootCmd creates the root command and registers every subcommand.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "food-assistant",
		Short: "Food assistant - recipes, nutrition and allergens from one question",
		Long: `food-assistant answers a free text food question by chaining four model steps:
a recipe finder, a nutrition analyst, an allergen specialist and a final coordinator.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.food-assistant.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("provider", "", "model provider: gemini or anthropic")
	flags.String("model", "", "model name")

	rootCmd.AddCommand(
		newAskCmd(a),
		newWeatherCmd(a),
		newTUICmd(a),
		newServeCmd(a),
		newRecipesCmd(a),
		newNutritionCmd(a),
		newLookupCmd(a),
		newDrawCmd(a),
	)

	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	v, err := config.New(a.cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	for key, flag := range map[string]string{
		"log.level":    "log-level",
		"llm.provider": "provider",
		"llm.model":    "model",
	} {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			v.Set(key, f.Value.String())
		}
	}

	a.cfg, err = config.Load(v)
	if err != nil {
		return err
	}

	a.log, err = logging.New(a.cfg.Log.Level, a.cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	return nil
}
