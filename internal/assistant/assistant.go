// Package assistant assembles the food and weather pipelines.
package assistant

import (
	"github.com/pkg/errors"

	"github.com/askiada/food-assistant/pkg/llm"
	"github.com/askiada/food-assistant/pkg/lookup"
	"github.com/askiada/food-assistant/pkg/pipeline"
	"github.com/askiada/food-assistant/pkg/pipeline/model"
)

const (
	FoodPipeline    = "food_assistant"
	WeatherPipeline = "weather_time"
)

var (
	ErrRecipesMustBeSet   = errors.New("recipe lookup must be set")
	ErrNutritionMustBeSet = errors.New("nutrition client must be set")
	ErrWeatherMustBeSet   = errors.New("weather client must be set")
)

// Config holds what both pipelines share.
type Config struct {
	Generator       llm.Generator
	Prompts         *Prompts
	ToolConcurrency int
	MaxToolRounds   int
	Options         []model.PipelineOption
}

func (c Config) stepOptions(tools ...llm.Tool) []pipeline.StepOption {
	opts := []pipeline.StepOption{pipeline.StepTools(tools...)}
	if c.ToolConcurrency > 0 {
		opts = append(opts, pipeline.StepConcurrency(c.ToolConcurrency))
	}
	if c.MaxToolRounds > 0 {
		opts = append(opts, pipeline.StepMaxToolRounds(c.MaxToolRounds))
	}

	return opts
}

func (c Config) prompts() (*Prompts, error) {
	if c.Prompts != nil {
		return c.Prompts, nil
	}

	return DefaultPrompts()
}

// NewFoodPipeline builds recipe finder, nutrition analyst, allergen checker and final formatter.
func NewFoodPipeline(cfg Config, recipes *lookup.RecipeLookup, nutrition *lookup.NutritionClient) (*pipeline.Pipeline, error) {
	if recipes == nil {
		return nil, ErrRecipesMustBeSet
	}
	if nutrition == nil {
		return nil, ErrNutritionMustBeSet
	}
	prompts, err := cfg.prompts()
	if err != nil {
		return nil, err
	}

	pipe, err := pipeline.New(FoodPipeline, cfg.Generator, NewFoodState, cfg.Options...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create food pipeline")
	}

	steps := []struct {
		name   string
		output string
		prompt Prompt
		tools  []llm.Tool
	}{
		{"recipe_finder", RecipeSlot, prompts.Recipe, []llm.Tool{lookup.RecipeTool(recipes)}},
		{"nutrition_analyst", NutritionSlot, prompts.Nutrition, []llm.Tool{lookup.NutritionTool(nutrition)}},
		{"allergen_alternatives", AllergenSlot, prompts.Allergen, nil},
		{"final_response", FinalSlot, prompts.Final, nil},
	}
	for _, s := range steps {
		_, err := pipeline.AddStep(pipe, s.name, s.output, s.prompt.Instruction, cfg.stepOptions(s.tools...)...)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add %s", s.name)
		}
	}

	return pipe, nil
}

// NewWeatherPipeline builds the single step weather and time assistant.
func NewWeatherPipeline(cfg Config, weather *lookup.WeatherClient) (*pipeline.Pipeline, error) {
	if weather == nil {
		return nil, ErrWeatherMustBeSet
	}
	prompts, err := cfg.prompts()
	if err != nil {
		return nil, err
	}

	pipe, err := pipeline.New(WeatherPipeline, cfg.Generator, NewWeatherState, cfg.Options...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create weather pipeline")
	}

	_, err = pipeline.AddStep(pipe, "weather_time", FinalSlot, prompts.Weather.Instruction,
		cfg.stepOptions(lookup.WeatherTool(weather), lookup.TimeTool(weather))...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to add weather_time")
	}

	return pipe, nil
}
