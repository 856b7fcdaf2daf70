package measure

import (
	"sync"
	"time"
)

// ToolInfo aggregates the calls of one tool made by a step.
type ToolInfo struct {
	Elapsed  time.Duration
	Calls    int64
	Failures int64
}

// AVGDuration returns the mean duration of a call.
func (ti ToolInfo) AVGDuration() time.Duration {
	if ti.Calls == 0 {
		return 0
	}

	return round(time.Duration(float64(ti.Elapsed) / float64(ti.Calls)))
}

type DefaultMetric struct {
	mu          sync.Mutex
	tools       map[string]*ToolInfo
	stepElapsed time.Duration
	total       int64
	failures    int64
}

func (mt *DefaultMetric) AddDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.total++
	mt.stepElapsed += elapsed
}

func (mt *DefaultMetric) AddFailure() {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.failures++
}

func (mt *DefaultMetric) AddToolCall(tool string, elapsed time.Duration, failed bool) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.tools[tool] == nil {
		mt.tools[tool] = &ToolInfo{}
	}
	info := mt.tools[tool]
	info.Elapsed += elapsed
	info.Calls++
	if failed {
		info.Failures++
	}
}

func (mt *DefaultMetric) AVGDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.total == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.stepElapsed) / float64(mt.total)))
}

func (mt *DefaultMetric) Total() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.total
}

func (mt *DefaultMetric) Failures() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.failures
}

// AllTools returns a copy of the tool aggregates.
func (mt *DefaultMetric) AllTools() map[string]*ToolInfo {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	out := make(map[string]*ToolInfo, len(mt.tools))
	for name, info := range mt.tools {
		copied := *info
		out[name] = &copied
	}

	return out
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Hour)
	case d > time.Minute:
		d = d.Round(time.Minute)
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}

var _ Metric = (*DefaultMetric)(nil)
