package assistant

import "github.com/askiada/food-assistant/pkg/pipeline"

const (
	RecipeSlot    = "recipe_result"
	NutritionSlot = "nutrition_result"
	AllergenSlot  = "allergen_result"
	FinalSlot     = "final_response"
)

// FoodState is the state of one food assistant run.
type FoodState struct {
	query     string
	Recipe    pipeline.Slot
	Nutrition pipeline.Slot
	Allergen  pipeline.Slot
	Final     pipeline.Slot
}

func NewFoodState(query string) pipeline.State {
	return &FoodState{query: query}
}

func (s *FoodState) Query() string {
	return s.query
}

func (s *FoodState) Slot(name string) (*pipeline.Slot, bool) {
	switch name {
	case RecipeSlot:
		return &s.Recipe, true
	case NutritionSlot:
		return &s.Nutrition, true
	case AllergenSlot:
		return &s.Allergen, true
	case FinalSlot:
		return &s.Final, true
	default:
		return nil, false
	}
}

// WeatherState is the state of one weather and time run.
type WeatherState struct {
	query string
	Final pipeline.Slot
}

func NewWeatherState(query string) pipeline.State {
	return &WeatherState{query: query}
}

func (s *WeatherState) Query() string {
	return s.query
}

func (s *WeatherState) Slot(name string) (*pipeline.Slot, bool) {
	if name == FinalSlot {
		return &s.Final, true
	}

	return nil, false
}
