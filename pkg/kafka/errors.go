package kafka

import (
	"errors"
	"strings"
)

var (
	ErrProducerClosed = errors.New("kafka producer is closed")
	ErrConsumerClosed = errors.New("kafka consumer is closed")
	ErrEmptyKey       = errors.New("message key cannot be empty")
	ErrEmptyValue     = errors.New("message value cannot be empty")
)

// ErrorType decides what the consumer does with a failed message:
// transient failures are retried in place, everything else goes to the DLQ.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeTransient
	ErrorTypePermanent
	// ErrorTypeBusiness is a well-formed message the flow rejected.
	ErrorTypeBusiness
)

var errorTypeNames = [...]string{
	ErrorTypeUnknown:   "unknown",
	ErrorTypeTransient: "transient",
	ErrorTypePermanent: "permanent",
	ErrorTypeBusiness:  "business",
}

func (t ErrorType) String() string {
	if t < 0 || int(t) >= len(errorTypeNames) {
		return errorTypeNames[ErrorTypeUnknown]
	}
	return errorTypeNames[t]
}

// KafkaError tags an error with how it should be handled.
type KafkaError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *KafkaError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *KafkaError) Unwrap() error {
	return e.Err
}

func NewTransientError(message string, err error) *KafkaError {
	return &KafkaError{ErrorTypeTransient, message, err}
}

func NewPermanentError(message string, err error) *KafkaError {
	return &KafkaError{ErrorTypePermanent, message, err}
}

func NewBusinessError(message string, err error) *KafkaError {
	return &KafkaError{ErrorTypeBusiness, message, err}
}

// Network failures that show up as plain errors from the client library.
var transientMarkers = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"network is unreachable",
	"timeout",
	"deadline exceeded",
	"temporary failure",
	"leader not available",
}

// ClassifyError returns the type of a tagged error, or guesses one from the
// message of an untagged error. Untagged errors that look like nothing known
// are permanent.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeUnknown
	}

	var kafkaErr *KafkaError
	if errors.As(err, &kafkaErr) {
		return kafkaErr.Type
	}
	// Broker error codes from kafka-go and net errors both say so themselves.
	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) && temporary.Temporary() {
		return ErrorTypeTransient
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return ErrorTypeTransient
		}
	}
	return ErrorTypePermanent
}

// ShouldRetry reports whether a message that failed with err gets another
// attempt after currentRetries.
func ShouldRetry(err error, currentRetries, maxRetries int) bool {
	return err != nil && currentRetries < maxRetries && ClassifyError(err) == ErrorTypeTransient
}
