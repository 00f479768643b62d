package repository

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	auditerrors "ordernorm/internal/audit/errors"
	"ordernorm/pkg/model"
)

// DefaultMemoryRetention is how long runs stay queryable when no Mongo
// audit store is configured.
const DefaultMemoryRetention = time.Hour

// MemoryFlowRunRepository keeps recent runs in process memory. Records
// expire after the retention period.
type MemoryFlowRunRepository struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

func NewMemoryFlowRunRepository(retention time.Duration) *MemoryFlowRunRepository {
	if retention <= 0 {
		retention = DefaultMemoryRetention
	}
	return &MemoryFlowRunRepository{cache: gocache.New(retention, retention/2)}
}

func (r *MemoryFlowRunRepository) Create(_ context.Context, run *model.FlowRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *run
	stored.Steps = append([]model.StepRecord{}, run.Steps...)
	r.cache.SetDefault(run.ID, &stored)
	return nil
}

func (r *MemoryFlowRunRepository) AppendStep(_ context.Context, runID string, step model.StepRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.get(runID)
	if !ok {
		return auditerrors.ErrNotFound
	}
	run.Steps = append(run.Steps, step)
	return nil
}

func (r *MemoryFlowRunRepository) Finish(_ context.Context, runID string, status string, finishedAt time.Time, failure *Failure) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.get(runID)
	if !ok {
		return auditerrors.ErrNotFound
	}
	run.Status = status
	run.FinishedAt = &finishedAt
	if failure != nil {
		run.Error = failure.Message
		run.ErrorCode = failure.Code
		run.FailedStep = failure.Step
	}
	return nil
}

func (r *MemoryFlowRunRepository) FindByID(_ context.Context, id string) (*model.FlowRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.get(id)
	if !ok {
		return nil, auditerrors.ErrNotFound
	}
	cp := *run
	cp.Steps = append([]model.StepRecord{}, run.Steps...)
	return &cp, nil
}

func (r *MemoryFlowRunRepository) Len() int {
	return r.cache.ItemCount()
}

func (r *MemoryFlowRunRepository) get(id string) (*model.FlowRun, bool) {
	v, found := r.cache.Get(id)
	if !found {
		return nil, false
	}
	run, ok := v.(*model.FlowRun)
	return run, ok
}
