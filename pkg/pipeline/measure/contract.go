package measure

import "time"

// Measure keeps one Metric per step of a pipeline.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric aggregates the executions of a single step.
type Metric interface {
	AddDuration(elapsed time.Duration)
	AddFailure()
	AddToolCall(tool string, elapsed time.Duration, failed bool)
	AVGDuration() time.Duration
	Total() int64
	Failures() int64
	AllTools() map[string]*ToolInfo
}
