package recorder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordernorm/internal/audit/repository"
	flowcore "ordernorm/internal/flow/core"
	apperrors "ordernorm/pkg/errors"
	"ordernorm/pkg/logger"
	"ordernorm/pkg/model"
	"ordernorm/pkg/value"
)

func runFlow(t *testing.T, rec flowcore.Recorder, steps ...*flowcore.Step) (*flowcore.FlowContext, error) {
	t.Helper()
	engine := flowcore.NewEngine(rec, nil, flowcore.NewFlow("assemble_document", steps...))
	fc := flowcore.NewFlowContext(context.Background(), value.Null(), logger.Discard())
	fc.Source = "http"
	fc.RequestID = "req-1"
	return fc, engine.Run("assemble_document", fc)
}

func TestAuditRecorder_CompletedRun(t *testing.T) {
	repo := repository.NewMemoryFlowRunRepository(time.Minute)
	rec := NewAuditRecorder(repo, logger.Discard())

	fc, err := runFlow(t, rec,
		flowcore.NewStep("clean_order", func(*flowcore.FlowContext) error { return nil }),
		flowcore.NewStep("merge", func(*flowcore.FlowContext) error { return nil }),
	)
	require.NoError(t, err)

	run, err := repo.FindByID(context.Background(), fc.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCompleted, run.Status)
	assert.Equal(t, "assemble_document", run.Flow)
	assert.Equal(t, "http", run.Source)
	assert.Equal(t, "req-1", run.RequestID)
	require.NotNil(t, run.FinishedAt)
	assert.Empty(t, run.Error)

	require.Len(t, run.Steps, 2)
	assert.Equal(t, "clean_order", run.Steps[0].Name)
	assert.Equal(t, model.StepStatusFinished, run.Steps[1].Status)
}

func TestAuditRecorder_FailedRun(t *testing.T) {
	repo := repository.NewMemoryFlowRunRepository(time.Minute)
	rec := NewAuditRecorder(repo, logger.Discard())

	fc, err := runFlow(t, rec,
		flowcore.NewStep("clean_order", func(*flowcore.FlowContext) error { return nil }),
		flowcore.NewStep("decompose_customer", func(*flowcore.FlowContext) error {
			return apperrors.AddressFormat("Unexpected address format", nil)
		}),
		flowcore.NewStep("merge", func(*flowcore.FlowContext) error { return nil }),
	)
	require.Error(t, err)

	run, err := repo.FindByID(context.Background(), fc.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusError, run.Status)
	assert.Equal(t, apperrors.CodeAddressFormat, run.ErrorCode)
	assert.Equal(t, "Unexpected address format", run.Error)
	assert.Equal(t, "decompose_customer", run.FailedStep)

	require.Len(t, run.Steps, 2)
	assert.Equal(t, model.StepStatusFailed, run.Steps[1].Status)
	assert.Contains(t, run.Steps[1].Error, "Unexpected address format")
}

type failingRepo struct {
	repository.FlowRunRepository
}

func (failingRepo) Create(context.Context, *model.FlowRun) error {
	return errors.New("mongo down")
}

func (failingRepo) AppendStep(context.Context, string, model.StepRecord) error {
	return errors.New("mongo down")
}

func (failingRepo) Finish(context.Context, string, string, time.Time, *repository.Failure) error {
	return errors.New("mongo down")
}

func TestAuditRecorder_StoreFailureDoesNotFailRun(t *testing.T) {
	rec := NewAuditRecorder(failingRepo{}, logger.Discard())

	ran := false
	_, err := runFlow(t, rec, flowcore.NewStep("clean", func(*flowcore.FlowContext) error {
		ran = true
		return nil
	}))

	assert.NoError(t, err)
	assert.True(t, ran)
}

func TestDescribeFailure_PlainError(t *testing.T) {
	failure := describeFailure(errors.New("boom"))

	assert.Equal(t, apperrors.CodeInternal, failure.Code)
	assert.Equal(t, "boom", failure.Message)
	assert.Empty(t, failure.Step)
}

func TestMulti(t *testing.T) {
	first := repository.NewMemoryFlowRunRepository(time.Minute)
	second := repository.NewMemoryFlowRunRepository(time.Minute)
	rec := Multi{
		NewAuditRecorder(first, logger.Discard()),
		NewAuditRecorder(second, logger.Discard()),
	}

	fc, err := runFlow(t, rec, flowcore.NewStep("clean", func(*flowcore.FlowContext) error { return nil }))
	require.NoError(t, err)

	for _, repo := range []*repository.MemoryFlowRunRepository{first, second} {
		run, err := repo.FindByID(context.Background(), fc.RunID)
		require.NoError(t, err)
		assert.Equal(t, model.RunStatusCompleted, run.Status)
	}
}
