package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	kafka_config "ordernorm/pkg/kafka/config"
	"ordernorm/pkg/logger"
)

const (
	defaultRetryDelay = 100 * time.Millisecond
	maxRetryDelay     = 5 * time.Second
	fetchErrorBackoff = time.Second
)

// Consumer reads one topic in a consumer group. Every fetched message is
// committed after it is handled, retried or dead-lettered, so a poison
// message never blocks its partition.
type Consumer struct {
	reader     messageReader
	dlq        *deadLetter
	topic      string
	maxRetries int
	retryDelay time.Duration
	handler    MessageHandler
	middleware []Middleware
	log        *logger.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewConsumer(cfg *kafka_config.Config, topic string, groupID string, dlqTopic string, handler MessageHandler, log *logger.Logger) (*Consumer, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("kafka consumer: nil config")
	case len(cfg.Brokers) == 0:
		return nil, errors.New("kafka consumer: no brokers")
	case topic == "":
		return nil, errors.New("kafka consumer: empty topic")
	case groupID == "":
		return nil, errors.New("kafka consumer: empty group id")
	case handler == nil:
		return nil, errors.New("kafka consumer: nil handler")
	}
	if log == nil {
		log = logger.Discard()
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           cfg.Brokers,
		Topic:             topic,
		GroupID:           groupID,
		MinBytes:          cfg.ConsumerMinBytes,
		MaxBytes:          cfg.ConsumerMaxBytes,
		MaxWait:           cfg.ConsumerMaxWait,
		CommitInterval:    cfg.ConsumerCommitInterval,
		HeartbeatInterval: cfg.ConsumerHeartbeatInterval,
		SessionTimeout:    cfg.ConsumerSessionTimeout,
		RebalanceTimeout:  cfg.ConsumerRebalanceTimeout,
		StartOffset:       cfg.ConsumerStartOffset,
		Logger:            kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger:       errorLogger(log),
	})

	var dlqWriter messageWriter
	if dlqTopic != "" {
		dlqWriter = newWriter(cfg, dlqTopic, true, log)
	}

	c := newConsumer(reader, dlqWriter, topic, groupID, dlqTopic, handler, log)
	c.maxRetries = cfg.ConsumerMaxRetries
	return c, nil
}

func newConsumer(reader messageReader, dlqWriter messageWriter, topic, groupID, dlqTopic string, handler MessageHandler, log *logger.Logger) *Consumer {
	return &Consumer{
		reader:     reader,
		dlq:        newDeadLetter(dlqWriter, dlqTopic, topic, groupID),
		topic:      topic,
		retryDelay: defaultRetryDelay,
		handler:    handler,
		log:        log.With("topic", topic, "group_id", groupID),
	}
}

func (c *Consumer) Use(mw Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware = append(c.middleware, mw)
}

// Start consumes until ctx is done and returns ctx's error.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConsumerClosed
	}
	c.wg.Add(1)
	handle := compose(c.handler, c.middleware)
	c.mu.RUnlock()
	defer c.wg.Done()

	for {
		km, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error("kafka fetch failed", "error", err)
			if err := sleep(ctx, fetchErrorBackoff); err != nil {
				return err
			}
			continue
		}

		msg := fromKafkaMessage(km)
		if err := c.process(ctx, handle, msg); err != nil {
			c.log.Warn("kafka message abandoned",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
		if err := c.reader.CommitMessages(ctx, km); err != nil {
			c.log.Error("kafka commit failed", "offset", km.Offset, "error", err)
		}
	}
}

// process retries transient failures in place with a doubling delay and
// dead-letters the message once it gives up.
func (c *Consumer) process(ctx context.Context, handle MessageHandler, msg Message) error {
	delay := c.retryDelay
	for {
		err := handle(ctx, msg)
		if err == nil {
			return nil
		}

		attempt := msg.GetRetryCount()
		if ShouldRetry(err, attempt, c.maxRetries) {
			msg.IncrementRetryCount()
			c.log.Info("retrying kafka message", "attempt", attempt+1, "max_retries", c.maxRetries, "error", err)
			if err := sleep(ctx, delay); err != nil {
				return err
			}
			delay = min(delay*2, maxRetryDelay)
			continue
		}

		if c.dlq != nil {
			if dlqErr := c.dlq.send(ctx, msg, err); dlqErr != nil {
				c.log.Error("dead letter failed", "dlq_topic", c.dlq.topic, "error", dlqErr, "cause", err)
			} else {
				c.log.Warn("message dead-lettered", "dlq_topic", c.dlq.topic, "retries", attempt, "cause", err)
			}
		}
		return err
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Close waits for Start to return, so cancel its context first, then
// closes the reader and the dead letter writer.
func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()
	return errors.Join(c.reader.Close(), c.dlq.close())
}
