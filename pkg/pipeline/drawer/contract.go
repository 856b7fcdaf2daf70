package drawer

import (
	"io"
	"time"

	"github.com/askiada/food-assistant/pkg/pipeline/measure"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// AddStep adds a step to the pipeline drawer.
	AddStep(stepName string) error
	// AddTool adds a tool used by a step.
	AddTool(stepName, toolName string) error
	// AddLink adds a link carrying a slot between two steps.
	AddLink(parentStepName, childStepName, slot string) error
	// SetTotalTime sets the total time of a step.
	SetTotalTime(stepName string, total time.Duration) error
	// AddMeasure colours the graph with the measured durations.
	AddMeasure(measure measure.Measure) error
	// Render writes the DOT description of the graph.
	Render(w io.Writer) error
	// Draw creates a file with the pipeline graph.
	Draw() error
}
