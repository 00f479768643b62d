package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	auditerrors "ordernorm/internal/audit/errors"
	"ordernorm/pkg/config"
	mongotimeout "ordernorm/pkg/db/mongo"
	"ordernorm/pkg/model"
)

const (
	CollectionName = "flow_run_audit"
)

type FlowRunRepository interface {
	Create(ctx context.Context, run *model.FlowRun) error
	AppendStep(ctx context.Context, runID string, step model.StepRecord) error
	Finish(ctx context.Context, runID string, status string, finishedAt time.Time, failure *Failure) error
	FindByID(ctx context.Context, id string) (*model.FlowRun, error)
}

// Failure is what gets stored about a failed run.
type Failure struct {
	Message string
	Code    string
	Step    string
}

type mongoFlowRunRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoFlowRunRepository(cfg *config.Config) FlowRunRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoFlowRunRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoFlowRunRepository) Create(ctx context.Context, run *model.FlowRun) error {
	ctx, cancel := mongotimeout.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	run.StartedAt = run.StartedAt.UTC().Truncate(time.Millisecond)
	if run.Steps == nil {
		run.Steps = []model.StepRecord{}
	}
	if _, err := r.collection.InsertOne(ctx, run); err != nil {
		return fmt.Errorf("failed to create flow run: %w", err)
	}
	return nil
}

func (r *mongoFlowRunRepository) AppendStep(ctx context.Context, runID string, step model.StepRecord) error {
	ctx, cancel := mongotimeout.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	step.StartedAt = step.StartedAt.UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": runID},
		bson.M{"$push": bson.M{"steps": step}},
	)
	if err != nil {
		return fmt.Errorf("failed to append step %s: %w", step.Name, err)
	}
	if result.MatchedCount == 0 {
		return auditerrors.ErrNotFound
	}
	return nil
}

func (r *mongoFlowRunRepository) Finish(ctx context.Context, runID string, status string, finishedAt time.Time, failure *Failure) error {
	ctx, cancel := mongotimeout.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	set := bson.M{
		"status":      status,
		"finished_at": finishedAt.UTC().Truncate(time.Millisecond),
	}
	if failure != nil {
		set["error"] = failure.Message
		set["error_code"] = failure.Code
		if failure.Step != "" {
			set["failed_step"] = failure.Step
		}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": runID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to finish flow run: %w", err)
	}
	if result.MatchedCount == 0 {
		return auditerrors.ErrNotFound
	}
	return nil
}

func (r *mongoFlowRunRepository) FindByID(ctx context.Context, id string) (*model.FlowRun, error) {
	ctx, cancel := mongotimeout.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", auditerrors.ErrInvalidID, id)
	}

	var run model.FlowRun
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&run)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auditerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find flow run: %w", err)
	}
	return &run, nil
}
