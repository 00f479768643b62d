package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	kafka_config "ordernorm/pkg/kafka/config"
	"ordernorm/pkg/logger"
)

// Producer publishes to one topic. A message the broker refuses is copied
// to the dead letter topic, when one is configured, and the error is still
// returned to the caller.
type Producer struct {
	writer     messageWriter
	dlq        *deadLetter
	topic      string
	middleware []Middleware

	mu     sync.RWMutex
	closed bool
}

func NewProducer(cfg *kafka_config.Config, topic string, dlqTopic string, log *logger.Logger) (*Producer, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("kafka producer: nil config")
	case len(cfg.Brokers) == 0:
		return nil, errors.New("kafka producer: no brokers")
	case topic == "":
		return nil, errors.New("kafka producer: empty topic")
	}
	if log == nil {
		log = logger.Discard()
	}

	var dlqWriter messageWriter
	if dlqTopic != "" {
		dlqWriter = newWriter(cfg, dlqTopic, true, log)
	}
	return newProducer(newWriter(cfg, topic, false, log), dlqWriter, topic, dlqTopic), nil
}

func newProducer(writer, dlqWriter messageWriter, topic, dlqTopic string) *Producer {
	return &Producer{
		writer: writer,
		dlq:    newDeadLetter(dlqWriter, dlqTopic, topic, ""),
		topic:  topic,
	}
}

func (p *Producer) Use(mw Middleware) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.middleware = append(p.middleware, mw)
}

func (p *Producer) Topic() string {
	return p.topic
}

// Publish writes msg after running the producer middleware around it.
func (p *Producer) Publish(ctx context.Context, msg Message) error {
	p.mu.RLock()
	closed := p.closed
	publish := compose(p.write, p.middleware)
	p.mu.RUnlock()

	switch {
	case closed:
		return ErrProducerClosed
	case msg.Key == "":
		return ErrEmptyKey
	case len(msg.Value) == 0:
		return ErrEmptyValue
	}
	if msg.Topic == "" {
		msg.Topic = p.topic
	}
	return publish(ctx, msg)
}

func (p *Producer) write(ctx context.Context, msg Message) error {
	at := msg.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	err := p.writer.WriteMessages(ctx, toKafkaMessage(msg, at))
	if err == nil || p.dlq == nil {
		return err
	}
	if dlqErr := p.dlq.send(ctx, msg, err); dlqErr != nil {
		return fmt.Errorf("%w (dead letter also failed: %v)", err, dlqErr)
	}
	return err
}

// Close flushes and closes both writers. Later calls are no-ops.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return errors.Join(p.writer.Close(), p.dlq.close())
}
