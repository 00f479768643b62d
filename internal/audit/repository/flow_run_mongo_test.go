package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	auditerrors "ordernorm/internal/audit/errors"
	"ordernorm/internal/audit/repository"
	migrations "ordernorm/internal/migrations/mongo"
	"ordernorm/internal/testutil"
	"ordernorm/pkg/model"
)

func newMongoRepository(t *testing.T) (repository.FlowRunRepository, *testutil.MongoHelper) {
	t.Helper()
	m := testutil.NewMongoHelper(t)
	cfg := m.Config()

	require.NoError(t, migrations.RunMigration(context.Background(), cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log))
	return repository.NewMongoFlowRunRepository(cfg), m
}

func TestMongoFlowRunRepository_Lifecycle(t *testing.T) {
	repo, m := newMongoRepository(t)
	ctx := context.Background()

	started := time.Now()
	run := &model.FlowRun{
		ID:        uuid.NewString(),
		Flow:      "assemble_document",
		Source:    "http",
		RequestID: "req-1",
		Status:    model.RunStatusRunning,
		StartedAt: started,
	}
	require.NoError(t, repo.Create(ctx, run))

	for _, name := range []string{"decode_document", "map_order"} {
		require.NoError(t, repo.AppendStep(ctx, run.ID, model.StepRecord{
			Name:       name,
			Status:     model.StepStatusFinished,
			StartedAt:  time.Now(),
			DurationMs: 1,
		}))
	}
	require.NoError(t, repo.AppendStep(ctx, run.ID, model.StepRecord{
		Name:      "decompose_customer",
		Status:    model.StepStatusFailed,
		Error:     "cannot split address",
		StartedAt: time.Now(),
	}))
	require.NoError(t, repo.Finish(ctx, run.ID, model.RunStatusError, time.Now(), &repository.Failure{
		Message: "cannot split address",
		Code:    "ADDRESS_FORMAT_ERROR",
		Step:    "decompose_customer",
	}))

	got, err := repo.FindByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusError, got.Status)
	assert.Equal(t, "decompose_customer", got.FailedStep)
	assert.Equal(t, "ADDRESS_FORMAT_ERROR", got.ErrorCode)
	require.Len(t, got.Steps, 3)
	assert.Equal(t, "map_order", got.Steps[1].Name)
	require.NotNil(t, got.FinishedAt)
	assert.True(t, got.Finished())

	assert.Equal(t, int64(1), m.Count(t, repository.CollectionName, bson.M{"status": model.RunStatusError}))
}

func TestMongoFlowRunRepository_Errors(t *testing.T) {
	repo, _ := newMongoRepository(t)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, auditerrors.ErrInvalidID)

	_, err = repo.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, auditerrors.ErrNotFound)

	err = repo.AppendStep(ctx, uuid.NewString(), model.StepRecord{Name: "x", Status: model.StepStatusFinished})
	assert.ErrorIs(t, err, auditerrors.ErrNotFound)

	err = repo.Finish(ctx, uuid.NewString(), model.RunStatusCompleted, time.Now(), nil)
	assert.ErrorIs(t, err, auditerrors.ErrNotFound)
}

func TestMongoFlowRunRepository_ValidatorRejectsBadStatus(t *testing.T) {
	repo, _ := newMongoRepository(t)

	err := repo.Create(context.Background(), &model.FlowRun{
		ID:        uuid.NewString(),
		Flow:      "clean_record",
		Status:    "paused",
		StartedAt: time.Now(),
	})
	assert.Error(t, err)
}

func TestRunMigration_Idempotent(t *testing.T) {
	_, m := newMongoRepository(t)
	cfg := m.Config()

	require.NoError(t, migrations.RunMigration(context.Background(), cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log))
}
