package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"

	kafka_config "ordernorm/pkg/kafka/config"
	"ordernorm/pkg/logger"
)

// messageReader is the part of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// messageWriter is the part of *kafka.Writer producers and dead letters use.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Middleware wraps a handler or a publish. Producers and consumers both
// apply theirs in registration order, the first registered outermost.
type Middleware func(ctx context.Context, msg Message, next MessageHandler) error

type (
	ProducerMiddleware = Middleware
	ConsumerMiddleware = Middleware
)

func compose(h MessageHandler, mws []Middleware) MessageHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		mw, next := mws[i], h
		h = func(ctx context.Context, msg Message) error {
			return mw(ctx, msg, next)
		}
	}
	return h
}

var codecs = map[string]compress.Compression{
	"gzip":   compress.Gzip,
	"snappy": compress.Snappy,
	"lz4":    compress.Lz4,
	"zstd":   compress.Zstd,
}

var acks = map[int]kafka.RequiredAcks{
	-1: kafka.RequireAll,
	0:  kafka.RequireNone,
	1:  kafka.RequireOne,
}

// newWriter builds a writer for topic. Dead letter writers ignore the
// producer tuning and always wait for every replica.
func newWriter(cfg *kafka_config.Config, topic string, deadLetter bool, log *logger.Logger) *kafka.Writer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		Compression:  codecs[cfg.ProducerCompression],
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger:  errorLogger(log),
	}
	if !deadLetter {
		if a, ok := acks[cfg.ProducerRequireAcks]; ok {
			w.RequiredAcks = a
		}
		w.MaxAttempts = cfg.ProducerMaxAttempts
		w.BatchTimeout = cfg.ProducerBatchTimeout
		w.Async = cfg.ProducerAsync
	}
	return w
}

// errorLogger routes kafka-go's printf-style errors into the structured log.
func errorLogger(log *logger.Logger) kafka.LoggerFunc {
	return func(msg string, args ...any) {
		log.Error("kafka client error", "detail", fmt.Sprintf(msg, args...))
	}
}

func toKafkaMessage(msg Message, at time.Time) kafka.Message {
	out := kafka.Message{Key: []byte(msg.Key), Value: msg.Value, Time: at}
	if len(msg.Headers) > 0 {
		out.Headers = make([]kafka.Header, 0, len(msg.Headers))
	}
	for k, v := range msg.Headers {
		out.Headers = append(out.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return out
}

func fromKafkaMessage(km kafka.Message) Message {
	headers := make(map[string]string, len(km.Headers))
	for _, h := range km.Headers {
		headers[h.Key] = string(h.Value)
	}
	return Message{
		Key:       string(km.Key),
		Value:     km.Value,
		Headers:   headers,
		Topic:     km.Topic,
		Partition: km.Partition,
		Offset:    km.Offset,
		Timestamp: km.Time,
	}
}
