package recorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	flowcore "ordernorm/internal/flow/core"
	apperrors "ordernorm/pkg/errors"
	"ordernorm/pkg/logger"
)

const DefaultNotifyTimeout = 5 * time.Second

// Notifier delivers a one-line alert, as client.NotifyClient does.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// NotifyRecorder alerts an operator whenever a run fails. Successful runs
// are not reported.
type NotifyRecorder struct {
	notifier Notifier
	log      *logger.Logger
	timeout  time.Duration
}

var _ flowcore.Recorder = (*NotifyRecorder)(nil)

func NewNotifyRecorder(notifier Notifier, log *logger.Logger) *NotifyRecorder {
	return &NotifyRecorder{notifier: notifier, log: log, timeout: DefaultNotifyTimeout}
}

func (r *NotifyRecorder) RunStarted(context.Context, flowcore.RunInfo) {}

func (r *NotifyRecorder) StepFinished(context.Context, string, flowcore.StepResult) {}

// RunFinished sends the alert before returning, so the caller's response
// waits at most the notify timeout.
func (r *NotifyRecorder) RunFinished(ctx context.Context, runID string, _ time.Time, runErr error) {
	if runErr == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()
	if err := r.notifier.Send(ctx, FailureMessage(runID, runErr)); err != nil {
		r.log.Error("failed to send failure notification", "run_id", runID, "error", err)
	}
}

// FailureMessage is the alert text for a failed run: flow, failing step,
// the error message and the HTTP status the caller was given.
func FailureMessage(runID string, err error) string {
	failure := describeFailure(err)

	msg := "Flow run failed"
	var runErr *flowcore.RunError
	if errors.As(err, &runErr) {
		msg = fmt.Sprintf("Flow %s failed", runErr.Flow)
	}
	if failure.Step != "" {
		msg += " at step " + failure.Step
	}
	return fmt.Sprintf("%s: %s (%s, %d), run %s",
		msg, failure.Message, failure.Code, apperrors.AsAppError(err).StatusCode(), runID)
}
