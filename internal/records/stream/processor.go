package stream

import (
	"context"
	"errors"

	"ordernorm/internal/flow/flows"
	flowservice "ordernorm/internal/flow/service"
	apperrors "ordernorm/pkg/errors"
	"ordernorm/pkg/kafka"
	"ordernorm/pkg/logger"
)

// Publisher is the part of kafka.Producer the processor needs.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// Processor consumes raw records, runs a flow over each one and publishes
// the output. The event-type header picks the flow; records without one
// are cleaned.
type Processor struct {
	flows     *flowservice.FlowService
	publisher Publisher
	log       *logger.Logger
	maxDepth  int
}

func NewProcessor(flows *flowservice.FlowService, publisher Publisher, log *logger.Logger, maxDepth int) *Processor {
	return &Processor{
		flows:     flows,
		publisher: publisher,
		log:       log,
		maxDepth:  maxDepth,
	}
}

// Handle is a kafka.MessageHandler.
func (p *Processor) Handle(ctx context.Context, msg kafka.Message) error {
	input, err := msg.Document(p.maxDepth)
	if err != nil {
		return kafka.NewPermanentError("deserialization failed", err)
	}

	flowName := msg.GetEventType()
	if flowName == "" {
		flowName = flows.CleanRecord
	}

	requestID := msg.GetCorrelationID()
	if requestID == "" {
		requestID = msg.GetEventID()
	}

	result, err := p.flows.Execute(ctx, flowName, input, flowservice.Origin{
		Source:    flowservice.SourceKafka,
		RequestID: requestID,
	})
	if err != nil {
		return classify(err)
	}

	builder, err := kafka.NewDocumentMessage(result.Output)
	if err != nil {
		return kafka.NewPermanentError("failed to encode flow output", err)
	}

	key := msg.Key
	if key == "" {
		key = result.RunID
	}
	out := builder.
		WithKey(key).
		WithEventType(flowName + ".completed").
		WithRunID(result.RunID).
		WithCorrelationID(requestID).
		WithSource(flowservice.SourceKafka).
		Build()

	if err := p.publisher.Publish(ctx, out); err != nil {
		return kafka.NewTransientError("failed to publish flow output", err)
	}
	p.log.Debug("record processed", "flow", flowName, "run_id", result.RunID, "key", key)
	return nil
}

// classify keeps retrying only what may succeed on a second attempt.
func classify(err error) error {
	var appErr *apperrors.AppError
	switch {
	case !errors.As(err, &appErr):
		return kafka.NewPermanentError("flow failed", err)
	case appErr.Retryable():
		return kafka.NewTransientError(appErr.Message, err)
	}
	return kafka.NewBusinessError(appErr.Message, err)
}
