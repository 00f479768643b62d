package model

import (
	"time"
)

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusError     = "error"

	StepStatusFinished = "finished"
	StepStatusFailed   = "failed"
)

// FlowRun is the audit record of one flow execution.
type FlowRun struct {
	ID         string       `json:"id" bson:"_id" validate:"required,uuid"`
	Flow       string       `json:"flow" bson:"flow" validate:"required"`
	Source     string       `json:"source,omitempty" bson:"source,omitempty"`
	RequestID  string       `json:"request_id,omitempty" bson:"request_id,omitempty"`
	Status     string       `json:"status" bson:"status" validate:"required,oneof=running completed error"`
	Steps      []StepRecord `json:"steps" bson:"steps" validate:"dive"`
	Error      string       `json:"error,omitempty" bson:"error,omitempty"`
	ErrorCode  string       `json:"error_code,omitempty" bson:"error_code,omitempty"`
	FailedStep string       `json:"failed_step,omitempty" bson:"failed_step,omitempty"`
	StartedAt  time.Time    `json:"started_at" bson:"started_at" validate:"required"`
	FinishedAt *time.Time   `json:"finished_at,omitempty" bson:"finished_at,omitempty" validate:"omitempty,gtefield=StartedAt"`
}

type StepRecord struct {
	Name       string    `json:"name" bson:"name" validate:"required"`
	Status     string    `json:"status" bson:"status" validate:"required,oneof=finished failed"`
	Error      string    `json:"error,omitempty" bson:"error,omitempty"`
	StartedAt  time.Time `json:"started_at" bson:"started_at"`
	DurationMs int64     `json:"duration_ms" bson:"duration_ms" validate:"gte=0"`
}

// Finished reports whether the run reached a terminal status.
func (r *FlowRun) Finished() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusError
}
