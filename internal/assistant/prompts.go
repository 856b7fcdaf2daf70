package assistant

import (
	_ "embed"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Prompt is the instruction of one step.
type Prompt struct {
	Description string `yaml:"description"`
	Instruction string `yaml:"instruction" validate:"required"`
}

type Prompts struct {
	Recipe    Prompt `yaml:"recipe"`
	Nutrition Prompt `yaml:"nutrition"`
	Allergen  Prompt `yaml:"allergen"`
	Final     Prompt `yaml:"final"`
	Weather   Prompt `yaml:"weather"`
}

// DefaultPrompts returns the embedded prompts.
func DefaultPrompts() (*Prompts, error) {
	prompts := &Prompts{}
	err := yaml.Unmarshal(defaultPrompts, prompts)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse embedded prompts")
	}

	return prompts, nil
}

// LoadPrompts reads prompts from path on top of the embedded ones. An empty path returns the embedded prompts.
func LoadPrompts(path string) (*Prompts, error) {
	prompts, err := DefaultPrompts()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return prompts, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read prompts file %s", path)
	}
	err = yaml.Unmarshal(content, prompts)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse prompts file %s", path)
	}

	err = validator.New().Struct(prompts)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid prompts file %s", path)
	}

	return prompts, nil
}
