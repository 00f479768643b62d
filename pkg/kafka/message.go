package kafka

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"ordernorm/pkg/value"
)

// ErrDocumentTooDeep is returned by Message.Document for payloads nested
// past the allowed depth.
var ErrDocumentTooDeep = errors.New("document nesting too deep")

// Message is one record on a topic. Value holds a JSON document.
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int   // set by Kafka
	Offset    int64 // set by Kafka
	Timestamp time.Time
}

const (
	HeaderEventID       = "event-id"
	HeaderEventType     = "event-type"
	HeaderCorrelationID = "correlation-id"
	HeaderRunID         = "run-id"
	HeaderSource        = "source"
	HeaderTimestamp     = "timestamp"
	HeaderRetryCount    = "retry-count"
	HeaderOriginalTopic = "original-topic"

	HeaderDLQError         = "dlq-error"
	HeaderDLQErrorType     = "dlq-error-type"
	HeaderDLQTimestamp     = "dlq-timestamp"
	HeaderDLQConsumerGroup = "dlq-consumer-group"
)

// MessageHandler processes one message. A non-nil error is classified with
// ClassifyError to decide between a retry and the DLQ.
type MessageHandler func(ctx context.Context, msg Message) error

type MessageBuilder struct {
	msg Message
}

func NewMessage() *MessageBuilder {
	return &MessageBuilder{
		msg: Message{
			Headers:   make(map[string]string),
			Timestamp: time.Now(),
		},
	}
}

// NewDocumentMessage starts a message carrying doc, encoded with its key
// order intact.
func NewDocumentMessage(doc value.Value) (*MessageBuilder, error) {
	data, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return NewMessage().WithRawValue(data), nil
}

// WithKey sets the partition key
func (mb *MessageBuilder) WithKey(key string) *MessageBuilder {
	mb.msg.Key = key
	return mb
}

func (mb *MessageBuilder) WithRawValue(data []byte) *MessageBuilder {
	mb.msg.Value = data
	return mb
}

func (mb *MessageBuilder) WithEventID(eventID string) *MessageBuilder {
	return mb.header(HeaderEventID, eventID)
}

func (mb *MessageBuilder) WithEventType(eventType string) *MessageBuilder {
	return mb.header(HeaderEventType, eventType)
}

func (mb *MessageBuilder) WithCorrelationID(correlationID string) *MessageBuilder {
	return mb.header(HeaderCorrelationID, correlationID)
}

// WithRunID links the message to a recorded flow run.
func (mb *MessageBuilder) WithRunID(runID string) *MessageBuilder {
	return mb.header(HeaderRunID, runID)
}

func (mb *MessageBuilder) WithSource(source string) *MessageBuilder {
	return mb.header(HeaderSource, source)
}

func (mb *MessageBuilder) header(key, v string) *MessageBuilder {
	if v != "" {
		mb.msg.Headers[key] = v
	}
	return mb
}

// Build fills in the event id and timestamp headers when they were not set.
func (mb *MessageBuilder) Build() Message {
	if mb.msg.Headers[HeaderEventID] == "" {
		mb.msg.Headers[HeaderEventID] = uuid.NewString()
	}
	if mb.msg.Headers[HeaderTimestamp] == "" {
		mb.msg.Headers[HeaderTimestamp] = mb.msg.Timestamp.UTC().Format(time.RFC3339)
	}
	return mb.msg
}

// Document parses the value as a JSON document. maxDepth <= 0 disables the
// depth check.
func (m *Message) Document(maxDepth int) (value.Value, error) {
	doc, err := value.Parse(m.Value)
	if err != nil {
		return value.Value{}, err
	}
	if maxDepth > 0 && value.Depth(doc) > maxDepth {
		return value.Value{}, fmt.Errorf("%w: more than %d levels", ErrDocumentTooDeep, maxDepth)
	}
	return doc, nil
}

func (m *Message) GetEventID() string {
	return m.Headers[HeaderEventID]
}

func (m *Message) GetCorrelationID() string {
	return m.Headers[HeaderCorrelationID]
}

func (m *Message) GetRunID() string {
	return m.Headers[HeaderRunID]
}

func (m *Message) GetEventType() string {
	return m.Headers[HeaderEventType]
}

func (m *Message) GetRetryCount() int {
	n, err := strconv.Atoi(m.Headers[HeaderRetryCount])
	if err != nil {
		return 0
	}
	return n
}

func (m *Message) IncrementRetryCount() {
	if m.Headers == nil {
		m.Headers = make(map[string]string)
	}
	m.Headers[HeaderRetryCount] = strconv.Itoa(m.GetRetryCount() + 1)
}
