package recorder

import (
	"context"
	"errors"
	"time"

	"ordernorm/internal/audit/repository"
	flowcore "ordernorm/internal/flow/core"
	apperrors "ordernorm/pkg/errors"
	"ordernorm/pkg/logger"
	"ordernorm/pkg/model"
)

// AuditRecorder persists every run and its steps. A failing audit write is
// logged and never fails the run itself.
type AuditRecorder struct {
	repo repository.FlowRunRepository
	log  *logger.Logger
}

var _ flowcore.Recorder = (*AuditRecorder)(nil)

func NewAuditRecorder(repo repository.FlowRunRepository, log *logger.Logger) *AuditRecorder {
	return &AuditRecorder{repo: repo, log: log}
}

func (r *AuditRecorder) RunStarted(ctx context.Context, run flowcore.RunInfo) {
	err := r.repo.Create(context.WithoutCancel(ctx), &model.FlowRun{
		ID:        run.ID,
		Flow:      run.Flow,
		Source:    run.Source,
		RequestID: run.RequestID,
		Status:    model.RunStatusRunning,
		Steps:     []model.StepRecord{},
		StartedAt: run.StartedAt,
	})
	if err != nil {
		r.log.Error("failed to record flow run start", "run_id", run.ID, "flow", run.Flow, "error", err)
	}
}

func (r *AuditRecorder) StepFinished(ctx context.Context, runID string, step flowcore.StepResult) {
	record := model.StepRecord{
		Name:       step.Name,
		Status:     model.StepStatusFinished,
		StartedAt:  step.StartedAt,
		DurationMs: step.Duration.Milliseconds(),
	}
	if step.Err != nil {
		record.Status = model.StepStatusFailed
		record.Error = step.Err.Error()
	}

	if err := r.repo.AppendStep(context.WithoutCancel(ctx), runID, record); err != nil {
		r.log.Error("failed to record flow step", "run_id", runID, "step", step.Name, "error", err)
	}
}

func (r *AuditRecorder) RunFinished(ctx context.Context, runID string, finishedAt time.Time, runErr error) {
	status := model.RunStatusCompleted
	var failure *repository.Failure
	if runErr != nil {
		status = model.RunStatusError
		failure = describeFailure(runErr)
	}

	if err := r.repo.Finish(context.WithoutCancel(ctx), runID, status, finishedAt, failure); err != nil {
		r.log.Error("failed to record flow run end", "run_id", runID, "status", status, "error", err)
	}
}

func describeFailure(err error) *repository.Failure {
	failure := &repository.Failure{
		Message: err.Error(),
		Code:    apperrors.CodeInternal,
		Step:    flowcore.FailedStep(err),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		failure.Message = appErr.Message
		failure.Code = appErr.Code
	}
	return failure
}

// Multi fans one run out to several recorders, in order.
type Multi []flowcore.Recorder

func (m Multi) RunStarted(ctx context.Context, run flowcore.RunInfo) {
	for _, r := range m {
		r.RunStarted(ctx, run)
	}
}

func (m Multi) StepFinished(ctx context.Context, runID string, step flowcore.StepResult) {
	for _, r := range m {
		r.StepFinished(ctx, runID, step)
	}
}

func (m Multi) RunFinished(ctx context.Context, runID string, finishedAt time.Time, err error) {
	for _, r := range m {
		r.RunFinished(ctx, runID, finishedAt, err)
	}
}
