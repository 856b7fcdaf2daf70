package commands

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/askiada/food-assistant/internal/assistant"
	"github.com/askiada/food-assistant/internal/config"
	"github.com/askiada/food-assistant/internal/recipestore"
	"github.com/askiada/food-assistant/pkg/llm"
	"github.com/askiada/food-assistant/pkg/llm/anthropic"
	"github.com/askiada/food-assistant/pkg/llm/gemini"
	"github.com/askiada/food-assistant/pkg/lookup"
	"github.com/askiada/food-assistant/pkg/pipeline"
	"github.com/askiada/food-assistant/pkg/pipeline/drawer"
	"github.com/askiada/food-assistant/pkg/pipeline/logger"
	"github.com/askiada/food-assistant/pkg/pipeline/measure"
	"github.com/askiada/food-assistant/pkg/pipeline/model"
)

const metricsNamespace = "food_assistant"

var ErrUnknownProvider = errors.New("unknown model provider")

// closers runs cleanups in reverse order and keeps the first error.
type closers []func() error

func (c closers) Close() error {
	var first error
	for i := len(c) - 1; i >= 0; i-- {
		err := c[i]()
		if err != nil && first == nil {
			first = err
		}
	}

	return first
}

// buildOptions holds what changes between commands building a pipeline.
type buildOptions struct {
	registerer prometheus.Registerer
	drawPath   string
	// generator replaces the configured model when set.
	generator llm.Generator
}

func (a *app) generator(ctx context.Context) (llm.Generator, error) {
	switch a.cfg.LLM.Provider {
	case config.ProviderGemini:
		return gemini.New(ctx, gemini.Config{
			APIKey:  a.cfg.LLM.APIKey,
			Model:   a.cfg.LLM.Model,
			BaseURL: a.cfg.LLM.BaseURL,
			Timeout: a.cfg.LLM.Timeout,
		})
	case config.ProviderAnthropic:
		return anthropic.New(anthropic.Config{
			APIKey:  a.cfg.LLM.APIKey,
			Model:   a.cfg.LLM.Model,
			BaseURL: a.cfg.LLM.BaseURL,
			Timeout: a.cfg.LLM.Timeout,
		})
	default:
		return nil, errors.Wrap(ErrUnknownProvider, a.cfg.LLM.Provider)
	}
}

func (a *app) recipeLookup() (*lookup.RecipeLookup, *recipestore.Store, error) {
	store, err := recipestore.Open(a.cfg.Recipes.DBPath)
	if err != nil {
		return nil, nil, err
	}

	return lookup.NewRecipeLookup(store, a.log), store, nil
}

func (a *app) nutritionClient() (*lookup.NutritionClient, *lookup.Cache, error) {
	var cache *lookup.Cache
	if a.cfg.Nutrition.CacheTTL > 0 {
		var err error
		cache, err = lookup.NewCache(a.cfg.Nutrition.CacheTTL)
		if err != nil {
			return nil, nil, err
		}
	}

	client := lookup.NewNutritionClient(lookup.NutritionConfig{
		BaseURL:           a.cfg.Nutrition.BaseURL,
		Timeout:           a.cfg.Nutrition.Timeout,
		RequestsPerMinute: a.cfg.Nutrition.RequestsPerMinute,
		Cache:             cache,
	}, a.log)

	return client, cache, nil
}

func (a *app) weatherClient() *lookup.WeatherClient {
	return lookup.NewWeatherClient(lookup.WeatherConfig{
		GeocodeURL:  a.cfg.Weather.GeocodeURL,
		ForecastURL: a.cfg.Weather.ForecastURL,
		TimeURL:     a.cfg.Weather.TimeURL,
		Timeout:     a.cfg.Weather.Timeout,
	}, a.log)
}

func (a *app) assistantConfig(ctx context.Context, opts buildOptions) (assistant.Config, error) {
	gen := opts.generator
	if gen == nil {
		var err error
		gen, err = a.generator(ctx)
		if err != nil {
			return assistant.Config{}, err
		}
	}

	prompts, err := assistant.DefaultPrompts()
	if a.cfg.Pipeline.PromptsFile != "" {
		prompts, err = assistant.LoadPrompts(a.cfg.Pipeline.PromptsFile)
	}
	if err != nil {
		return assistant.Config{}, err
	}

	pipeOpts := []model.PipelineOption{logger.PipelineLogger(a.log)}

	msr := measure.NewDefaultMeasure()
	pipeOpts = append(pipeOpts, measure.PipelineMeasure(msr))

	if opts.registerer != nil {
		prom, err := measure.NewPrometheusMeasure(opts.registerer, metricsNamespace)
		if err != nil {
			return assistant.Config{}, err
		}
		pipeOpts = append(pipeOpts, prom.PipelineOption())
	}

	drawPath := opts.drawPath
	if drawPath == "" {
		drawPath = a.cfg.Pipeline.Draw
	}
	if drawPath != "" {
		pipeOpts = append(pipeOpts, drawer.PipelineDrawer(drawer.NewDOTDrawer(drawPath), msr))
	}

	return assistant.Config{
		Generator:       gen,
		Prompts:         prompts,
		ToolConcurrency: a.cfg.LLM.ToolConcurrency,
		MaxToolRounds:   a.cfg.LLM.MaxToolRounds,
		Options:         pipeOpts,
	}, nil
}

// foodPipeline builds the four step pipeline. The returned closers close the pipeline first, then its lookups.
func (a *app) foodPipeline(ctx context.Context, opts buildOptions) (*pipeline.Pipeline, closers, error) {
	var cleanup closers

	recipes, store, err := a.recipeLookup()
	if err != nil {
		return nil, nil, err
	}
	cleanup = append(cleanup, store.Close)

	nutrition, cache, err := a.nutritionClient()
	if err != nil {
		_ = cleanup.Close()

		return nil, nil, err
	}
	cleanup = append(cleanup, func() error {
		cache.Close()

		return nil
	})

	acfg, err := a.assistantConfig(ctx, opts)
	if err != nil {
		_ = cleanup.Close()

		return nil, nil, err
	}

	pipe, err := assistant.NewFoodPipeline(acfg, recipes, nutrition)
	if err != nil {
		_ = cleanup.Close()

		return nil, nil, err
	}
	cleanup = append(cleanup, pipe.Close)

	return pipe, cleanup, nil
}

func (a *app) weatherPipeline(ctx context.Context, opts buildOptions) (*pipeline.Pipeline, closers, error) {
	acfg, err := a.assistantConfig(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	pipe, err := assistant.NewWeatherPipeline(acfg, a.weatherClient())
	if err != nil {
		return nil, nil, err
	}

	return pipe, closers{pipe.Close}, nil
}
