package service

import (
	"context"
	"errors"

	auditerrors "ordernorm/internal/audit/errors"
	"ordernorm/internal/audit/repository"
	apperrors "ordernorm/pkg/errors"
	"ordernorm/pkg/logger"
	"ordernorm/pkg/model"
)

type FlowRunService interface {
	GetByID(ctx context.Context, id string) (*model.FlowRun, error)
}

type flowRunService struct {
	repo repository.FlowRunRepository
	log  *logger.Logger
}

func NewFlowRunService(repo repository.FlowRunRepository, log *logger.Logger) FlowRunService {
	return &flowRunService{repo: repo, log: log}
}

func (s *flowRunService) GetByID(ctx context.Context, id string) (*model.FlowRun, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Run ID cannot be empty")
	}

	run, err := s.repo.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, auditerrors.ErrInvalidID):
			return nil, apperrors.InvalidInput(err.Error())
		case errors.Is(err, auditerrors.ErrNotFound):
			return nil, apperrors.NotFound("Flow run")
		}
		s.log.Error("failed to get flow run", "run_id", id, "error", err)
		return nil, apperrors.Internal("Failed to get flow run", err)
	}
	return run, nil
}
