package kafka

import (
	"context"
	"maps"
	"time"
)

// deadLetter parks messages that could not be published or handled, with
// headers saying where they came from and why they were given up on.
type deadLetter struct {
	w      messageWriter
	topic  string
	origin string
	group  string
}

func newDeadLetter(w messageWriter, topic, origin, group string) *deadLetter {
	if w == nil {
		return nil
	}
	return &deadLetter{w: w, topic: topic, origin: origin, group: group}
}

func (d *deadLetter) send(ctx context.Context, msg Message, cause error) error {
	now := time.Now()
	headers := maps.Clone(msg.Headers)
	if headers == nil {
		headers = make(map[string]string, 5)
	}
	headers[HeaderOriginalTopic] = d.origin
	headers[HeaderDLQError] = cause.Error()
	headers[HeaderDLQErrorType] = ClassifyError(cause).String()
	headers[HeaderDLQTimestamp] = now.UTC().Format(time.RFC3339)
	if d.group != "" {
		headers[HeaderDLQConsumerGroup] = d.group
	}
	msg.Headers = headers
	return d.w.WriteMessages(ctx, toKafkaMessage(msg, now))
}

func (d *deadLetter) close() error {
	if d == nil {
		return nil
	}
	return d.w.Close()
}
