package measure

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/askiada/food-assistant/pkg/pipeline/model"
)

// PrometheusMeasure exports pipeline runs as Prometheus metrics.
type PrometheusMeasure struct {
	RunsTotal        *prometheus.CounterVec
	RunDuration      *prometheus.HistogramVec
	StepDuration     *prometheus.HistogramVec
	StepErrors       *prometheus.CounterVec
	ToolCallsTotal   *prometheus.CounterVec
	ToolCallDuration *prometheus.HistogramVec
}

// NewPrometheusMeasure creates the metric vectors and registers them with reg.
func NewPrometheusMeasure(reg prometheus.Registerer, namespace string) (*PrometheusMeasure, error) {
	pm := &PrometheusMeasure{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total number of pipeline runs",
		}, []string{"pipeline", "status"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_run_duration_seconds",
			Help:      "Duration of pipeline runs in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"pipeline"}),
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_step_duration_seconds",
			Help:      "Duration of successful steps in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"pipeline", "step"}),
		StepErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_step_errors_total",
			Help:      "Total number of failed steps",
		}, []string{"pipeline", "step"}),
		ToolCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_tool_calls_total",
			Help:      "Total number of tool calls",
		}, []string{"pipeline", "tool", "status"}),
		ToolCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_tool_call_duration_seconds",
			Help:      "Duration of tool calls in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"pipeline", "tool"}),
	}

	for _, c := range []prometheus.Collector{
		pm.RunsTotal, pm.RunDuration, pm.StepDuration, pm.StepErrors, pm.ToolCallsTotal, pm.ToolCallDuration,
	} {
		err := reg.Register(c)
		if err != nil {
			return nil, errors.Wrap(err, "unable to register collector")
		}
	}

	return pm, nil
}

type prometheusOption struct {
	*PrometheusMeasure
}

// PipelineOption returns the hooks feeding the metric vectors.
func (pm *PrometheusMeasure) PipelineOption() model.PipelineOption {
	return &prometheusOption{pm}
}

func (po *prometheusOption) New() error {
	return nil
}

func (po *prometheusOption) PrepareStep(_, _ *model.StepInfo) error {
	return nil
}

func (po *prometheusOption) OnRunStart(*model.RunInfo) error {
	return nil
}

func (po *prometheusOption) OnToolCall(run *model.RunInfo, _ *model.StepInfo, call model.ToolCallInfo) error {
	status := "success"
	if call.Failed {
		status = "error"
	}
	po.ToolCallsTotal.WithLabelValues(run.Pipeline, call.Name, status).Inc()
	po.ToolCallDuration.WithLabelValues(run.Pipeline, call.Name).Observe(call.Duration.Seconds())

	return nil
}

func (po *prometheusOption) OnStepOutput(run *model.RunInfo, _, step *model.StepInfo, computationDuration time.Duration) error {
	po.StepDuration.WithLabelValues(run.Pipeline, step.Name).Observe(computationDuration.Seconds())

	return nil
}

func (po *prometheusOption) OnStepError(run *model.RunInfo, step *model.StepInfo, _ error) error {
	po.StepErrors.WithLabelValues(run.Pipeline, step.Name).Inc()

	return nil
}

func (po *prometheusOption) OnRunEnd(run *model.RunInfo, status model.Status, totalDuration time.Duration) error {
	po.RunsTotal.WithLabelValues(run.Pipeline, status.Phase.String()).Inc()
	po.RunDuration.WithLabelValues(run.Pipeline).Observe(totalDuration.Seconds())

	return nil
}

func (po *prometheusOption) Finish() error {
	return nil
}
