package server

import (
	"fmt"

	flowservice "ordernorm/internal/flow/service"
	"ordernorm/internal/records/stream"
	"ordernorm/pkg/config"
	"ordernorm/pkg/kafka"
	kafka_middleware "ordernorm/pkg/kafka/middleware"
)

// Stream is the Kafka side of the service: records consumed from the input
// topic are processed and published to the output topic.
type Stream struct {
	Producer *kafka.Producer
	Consumer *kafka.Consumer
	Metrics  *kafka_middleware.Metrics
}

// NewStream returns nil when Kafka is disabled.
func NewStream(cfg *config.Config, flows *flowservice.FlowService) (*Stream, error) {
	if cfg.Kafka == nil || !cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := kafka.NewProducer(cfg.Kafka, cfg.Kafka.OutputTopic, cfg.Kafka.DLQTopic, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	processor := stream.NewProcessor(flows, producer, cfg.Log, cfg.MaxDocumentDepth)
	consumer, err := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.InputTopic, cfg.Kafka.GroupID, cfg.Kafka.DLQTopic, processor.Handle, cfg.Log)
	if err != nil {
		_ = producer.Close()
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	metrics := kafka_middleware.NewMetrics()
	if cfg.Kafka.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	}
	producer.Use(metrics.ProducerMiddleware())
	consumer.Use(metrics.ConsumerMiddleware())

	cfg.Log.Info("Kafka stream configured",
		"input_topic", cfg.Kafka.InputTopic,
		"output_topic", cfg.Kafka.OutputTopic,
		"dlq_topic", cfg.Kafka.DLQTopic,
	)
	return &Stream{Producer: producer, Consumer: consumer, Metrics: metrics}, nil
}
