// Package logger provides a pipeline option writing the lifecycle of runs to a slog.Logger.
package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/askiada/food-assistant/pkg/pipeline/model"
)

type pipelineLogger struct {
	log *slog.Logger
}

// PipelineLogger logs runs, steps and tool calls.
func PipelineLogger(log *slog.Logger) model.PipelineOption {
	if log == nil {
		log = slog.Default()
	}

	return &pipelineLogger{log: log}
}

func (pl *pipelineLogger) New() error {
	return nil
}

func (pl *pipelineLogger) PrepareStep(parentStep, step *model.StepInfo) error {
	pl.log.Debug("step added",
		"step", step.Name,
		"after", parentStep.Name,
		"output", step.Output,
		"inputs", step.Inputs,
		"tools", step.Tools,
	)

	return nil
}

func (pl *pipelineLogger) runLog(run *model.RunInfo) *slog.Logger {
	return pl.log.With("run_id", run.ID, "pipeline", run.Pipeline)
}

func (pl *pipelineLogger) OnRunStart(run *model.RunInfo) error {
	pl.runLog(run).Info("run started", "query", run.Query)

	return nil
}

func (pl *pipelineLogger) OnToolCall(run *model.RunInfo, step *model.StepInfo, call model.ToolCallInfo) error {
	level := slog.LevelDebug
	if call.Failed {
		level = slog.LevelWarn
	}
	pl.runLog(run).Log(context.Background(), level, "tool called",
		"step", step.Name,
		"tool", call.Name,
		"argument", call.Argument,
		"failed", call.Failed,
		"duration", call.Duration,
	)

	return nil
}

func (pl *pipelineLogger) OnStepOutput(run *model.RunInfo, _, step *model.StepInfo, computationDuration time.Duration) error {
	pl.runLog(run).Debug("step completed", "step", step.Name, "slot", step.Output, "duration", computationDuration)

	return nil
}

func (pl *pipelineLogger) OnStepError(run *model.RunInfo, step *model.StepInfo, err error) error {
	pl.runLog(run).Error("step failed", "step", step.Name, "index", step.Index, "error", err)

	return nil
}

func (pl *pipelineLogger) OnRunEnd(run *model.RunInfo, status model.Status, totalDuration time.Duration) error {
	pl.runLog(run).Info("run finished", "status", status.String(), "duration", totalDuration)

	return nil
}

func (pl *pipelineLogger) Finish() error {
	return nil
}
