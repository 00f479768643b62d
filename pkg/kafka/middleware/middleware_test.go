package kafka_middleware

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"ordernorm/pkg/kafka"
	"ordernorm/pkg/logger"
)

func TestMetrics_ConsumerMiddleware(t *testing.T) {
	m := NewMetrics()
	mw := m.ConsumerMiddleware()
	msg := kafka.NewMessage().WithKey("k").Build()

	_ = mw(context.Background(), msg, func(ctx context.Context, msg kafka.Message) error { return nil })
	_ = mw(context.Background(), msg, func(ctx context.Context, msg kafka.Message) error { return errors.New("x") })

	s := m.Snapshot()
	if s.Consumed != 1 || s.ConsumeFailed != 1 {
		t.Errorf("snapshot = %+v", s)
	}

	m.Reset()
	if m.Snapshot().Consumed != 0 {
		t.Error("Reset did not clear counters")
	}
}

func TestMetrics_ProducerMiddleware(t *testing.T) {
	m := NewMetrics()
	mw := m.ProducerMiddleware()
	msg := kafka.NewMessage().WithKey("k").Build()

	for i := 0; i < 3; i++ {
		_ = mw(context.Background(), msg, func(ctx context.Context, msg kafka.Message) error { return nil })
	}
	if got := m.Snapshot().Published; got != 3 {
		t.Errorf("published = %d, want 3", got)
	}
}

func TestLoggingConsumerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Output: &buf, Level: logger.DEBUG})
	mw := LoggingConsumerMiddleware(log)
	msg := kafka.NewMessage().WithKey("A-1").WithEventID("evt-1").Build()

	_ = mw(context.Background(), msg, func(ctx context.Context, msg kafka.Message) error { return errors.New("boom") })

	out := buf.String()
	if !strings.Contains(out, "kafka message failed") || !strings.Contains(out, `"event_id":"evt-1"`) {
		t.Errorf("log output = %s", out)
	}
}
