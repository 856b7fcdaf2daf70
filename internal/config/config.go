// Package config loads the food assistant configuration from file, environment and .env.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/askiada/food-assistant/pkg/llm/anthropic"
	"github.com/askiada/food-assistant/pkg/llm/gemini"
	"github.com/askiada/food-assistant/pkg/lookup"
)

const (
	EnvPrefix         = "FOOD_ASSISTANT"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// LLM configures the model. Timeout bounds every call to the model.
type LLM struct {
	Provider        string        `mapstructure:"provider" validate:"oneof=gemini anthropic"`
	Model           string        `mapstructure:"model"`
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url" validate:"omitempty,url"`
	MaxToolRounds   int           `mapstructure:"max_tool_rounds" validate:"min=1"`
	ToolConcurrency int           `mapstructure:"tool_concurrency" validate:"min=1"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type Recipes struct {
	DBPath string `mapstructure:"db_path" validate:"required"`
}

type Nutrition struct {
	BaseURL           string        `mapstructure:"base_url" validate:"required,url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute" validate:"min=0"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
}

type Weather struct {
	GeocodeURL  string        `mapstructure:"geocode_url" validate:"required,url"`
	ForecastURL string        `mapstructure:"forecast_url" validate:"required,url"`
	TimeURL     string        `mapstructure:"time_url" validate:"required,url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type Log struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

type Server struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

type Pipeline struct {
	// Draw is the path of the DOT file written when a pipeline is closed, empty disables drawing.
	Draw        string `mapstructure:"draw"`
	PromptsFile string `mapstructure:"prompts_file"`
}

type Config struct {
	LLM       LLM       `mapstructure:"llm"`
	Recipes   Recipes   `mapstructure:"recipes"`
	Nutrition Nutrition `mapstructure:"nutrition"`
	Weather   Weather   `mapstructure:"weather"`
	Log       Log       `mapstructure:"log"`
	Server    Server    `mapstructure:"server"`
	Pipeline  Pipeline  `mapstructure:"pipeline"`
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", ProviderGemini)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.max_tool_rounds", 10)
	v.SetDefault("llm.tool_concurrency", 4)
	v.SetDefault("llm.timeout", gemini.DefaultTimeout)

	v.SetDefault("recipes.db_path", "13k-recipes.db")

	v.SetDefault("nutrition.base_url", lookup.DefaultNutritionURL)
	v.SetDefault("nutrition.timeout", lookup.DefaultNutritionTimeout)
	v.SetDefault("nutrition.requests_per_minute", 10)
	v.SetDefault("nutrition.cache_ttl", time.Hour)

	v.SetDefault("weather.geocode_url", lookup.DefaultGeocodeURL)
	v.SetDefault("weather.forecast_url", lookup.DefaultForecastURL)
	v.SetDefault("weather.time_url", lookup.DefaultTimeURL)
	v.SetDefault("weather.timeout", lookup.DefaultTimeout)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("pipeline.draw", "")
	v.SetDefault("pipeline.prompts_file", "")
}

// New creates a viper instance reading cfgFile, or $HOME/.food-assistant.yaml when cfgFile is empty.
// Variables from a .env file in the working directory are exported first.
func New(cfgFile string) (*viper.Viper, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "unable to load .env")
	}

	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".food-assistant")
		v.SetConfigType("yaml")
	}

	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "unable to read config")
		}
	}

	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	err := v.Unmarshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "unable to decode config")
	}

	cfg.LLM.Provider = strings.ToLower(cfg.LLM.Provider)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	cfg.resolveLLM()
	cfg.Recipes.DBPath = expandHome(cfg.Recipes.DBPath)

	err = validator.New().Struct(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

func (c *Config) resolveLLM() {
	switch c.LLM.Provider {
	case ProviderAnthropic:
		if c.LLM.Model == "" {
			c.LLM.Model = anthropic.DefaultModel
		}
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case ProviderGemini:
		if c.LLM.Model == "" {
			c.LLM.Model = gemini.DefaultModel
		}
		for _, env := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
			if c.LLM.APIKey != "" {
				break
			}
			c.LLM.APIKey = os.Getenv(env)
		}
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[2:])
}
