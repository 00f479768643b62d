package service

import (
	"context"

	"ordernorm/internal/flow/flows"
	flowservice "ordernorm/internal/flow/service"
	apperrors "ordernorm/pkg/errors"
	"ordernorm/pkg/kafka"
	"ordernorm/pkg/logger"
	"ordernorm/pkg/middleware"
	"ordernorm/pkg/value"
)

const EventDocumentAssembled = "document.assembled"

// Publisher is the part of kafka.Producer the service needs.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type RecordService interface {
	Clean(ctx context.Context, record value.Value) (*flowservice.RunResult, error)
	DecomposeAddress(ctx context.Context, input value.Value) (*flowservice.RunResult, error)
	Map(ctx context.Context, input value.Value) (*flowservice.RunResult, error)
	AssembleDocument(ctx context.Context, input value.Value) (*flowservice.RunResult, error)
}

type recordService struct {
	flows     *flowservice.FlowService
	publisher Publisher
	log       *logger.Logger
}

// NewRecordService wires the HTTP record operations to their flows.
// publisher may be nil, in which case assembled documents are only returned.
func NewRecordService(flows *flowservice.FlowService, publisher Publisher, log *logger.Logger) RecordService {
	return &recordService{
		flows:     flows,
		publisher: publisher,
		log:       log,
	}
}

func (s *recordService) origin(ctx context.Context) flowservice.Origin {
	return flowservice.Origin{
		Source:    flowservice.SourceHTTP,
		RequestID: middleware.RequestIDFromContext(ctx),
	}
}

func (s *recordService) Clean(ctx context.Context, record value.Value) (*flowservice.RunResult, error) {
	return s.flows.Execute(ctx, flows.CleanRecord, record, s.origin(ctx))
}

func (s *recordService) DecomposeAddress(ctx context.Context, input value.Value) (*flowservice.RunResult, error) {
	return s.flows.Execute(ctx, flows.DecomposeAddress, input, s.origin(ctx))
}

func (s *recordService) Map(ctx context.Context, input value.Value) (*flowservice.RunResult, error) {
	return s.flows.Execute(ctx, flows.MapRecord, input, s.origin(ctx))
}

func (s *recordService) AssembleDocument(ctx context.Context, input value.Value) (*flowservice.RunResult, error) {
	origin := s.origin(ctx)
	result, err := s.flows.Execute(ctx, flows.AssembleDocument, input, origin)
	if err != nil || s.publisher == nil {
		return result, err
	}

	builder, err := kafka.NewDocumentMessage(result.Output)
	if err != nil {
		return result, apperrors.Internal("Failed to encode document", err)
	}

	msg := builder.
		WithKey(result.RunID).
		WithEventType(EventDocumentAssembled).
		WithRunID(result.RunID).
		WithCorrelationID(origin.RequestID).
		WithSource(flowservice.SourceHTTP).
		Build()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.log.Error("failed to publish assembled document", "run_id", result.RunID, "error", err)
		return result, apperrors.Unavailable("Document stream").
			WithDetails(map[string]any{"run_id": result.RunID})
	}
	return result, nil
}
