package lookup

import (
	"context"

	"github.com/askiada/food-assistant/pkg/llm"
)

func payload[T any](res Result[T], key string) map[string]any {
	if !res.OK() {
		return llm.Failure(res.Failure().Message)
	}

	return llm.Success(key, res.Value())
}

// RecipeTool exposes the recipe store as get_recipe_details.
func RecipeTool(rl *RecipeLookup) llm.Tool {
	return llm.NewTool(llm.ToolSpec{
		Name:             "get_recipe_details",
		Description:      "Search for a recipe in the local recipe database based on the dish name.",
		Param:            "dish_name",
		ParamDescription: "Name of the dish, for example pancakes.",
	}, func(ctx context.Context, dish string) map[string]any {
		return payload(rl.Lookup(ctx, dish), "result")
	})
}

// NutritionTool exposes Open Food Facts as get_nutrition_data.
func NutritionTool(nc *NutritionClient) llm.Tool {
	return llm.NewTool(llm.ToolSpec{
		Name:             "get_nutrition_data",
		Description:      "Get nutritional information for an ingredient or product from Open Food Facts.",
		Param:            "query",
		ParamDescription: "Ingredient name, product name or barcode.",
	}, func(ctx context.Context, query string) map[string]any {
		return payload(nc.Lookup(ctx, query), "result")
	})
}

// WeatherTool exposes the current weather as get_weather.
func WeatherTool(wc *WeatherClient) llm.Tool {
	return llm.NewTool(llm.ToolSpec{
		Name:             "get_weather",
		Description:      "Returns the current weather for a city.",
		Param:            "city",
		ParamDescription: "City name, for example Rockville MD.",
	}, func(ctx context.Context, city string) map[string]any {
		return payload(wc.Weather(ctx, city), "report")
	})
}

// TimeTool exposes the local time as get_current_time.
func TimeTool(wc *WeatherClient) llm.Tool {
	return llm.NewTool(llm.ToolSpec{
		Name:             "get_current_time",
		Description:      "Returns the current local time for a city.",
		Param:            "city",
		ParamDescription: "City name, for example Tokyo.",
	}, func(ctx context.Context, city string) map[string]any {
		return payload(wc.CurrentTime(ctx, city), "report")
	})
}
