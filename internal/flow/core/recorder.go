package core

import (
	"context"
	"time"

	"ordernorm/pkg/logger"
)

type RunInfo struct {
	ID        string
	Flow      string
	Source    string
	RequestID string
	StartedAt time.Time
}

type StepResult struct {
	Name      string
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

// Recorder observes runs. Implementations must not fail the run: problems
// writing the record are theirs to log.
type Recorder interface {
	RunStarted(ctx context.Context, run RunInfo)
	StepFinished(ctx context.Context, runID string, step StepResult)
	RunFinished(ctx context.Context, runID string, finishedAt time.Time, err error)
}

// LogRecorder writes runs to the structured log only.
type LogRecorder struct {
	log *logger.Logger
}

func NewLogRecorder(log *logger.Logger) *LogRecorder {
	return &LogRecorder{log: log}
}

func (r *LogRecorder) RunStarted(_ context.Context, run RunInfo) {
	r.log.Info("flow run started",
		"run_id", run.ID,
		"flow", run.Flow,
		"source", run.Source,
		"request_id", run.RequestID,
	)
}

func (r *LogRecorder) StepFinished(_ context.Context, runID string, step StepResult) {
	if step.Err != nil {
		r.log.Warn("flow step failed",
			"run_id", runID,
			"step", step.Name,
			"duration_ms", step.Duration.Milliseconds(),
			"error", step.Err,
		)
		return
	}
	r.log.Debug("flow step finished",
		"run_id", runID,
		"step", step.Name,
		"duration_ms", step.Duration.Milliseconds(),
	)
}

func (r *LogRecorder) RunFinished(_ context.Context, runID string, _ time.Time, err error) {
	if err != nil {
		r.log.Error("flow run failed", "run_id", runID, "error", err)
		return
	}
	r.log.Info("flow run completed", "run_id", runID)
}
