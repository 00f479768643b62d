package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ordernorm/pkg/logger"
	"ordernorm/pkg/value"
)

// FlowContext carries one run through its steps. Steps read Input, share
// intermediate results through Process and leave the result in Output.
type FlowContext struct {
	Ctx       context.Context
	RunID     string
	Source    string
	RequestID string
	StartedAt time.Time

	Input   value.Value
	Process map[string]any
	Output  value.Value

	Log *logger.Logger
}

func NewFlowContext(ctx context.Context, input value.Value, log *logger.Logger) *FlowContext {
	if log == nil {
		log = logger.Discard()
	}
	return &FlowContext{
		Ctx:     ctx,
		RunID:   uuid.NewString(),
		Input:   input,
		Process: make(map[string]any),
		Output:  value.Null(),
		Log:     log,
	}
}

// InputObject returns Input as an object, or nil when it is not one.
func (fc *FlowContext) InputObject() *value.Object {
	obj, _ := fc.Input.Object()
	return obj
}
