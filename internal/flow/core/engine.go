package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	apperrors "ordernorm/pkg/errors"
)

// RunError reports the step a run stopped at. It unwraps to the step's
// error so AppError codes survive.
type RunError struct {
	RunID string
	Flow  string
	Step  string
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s step failed, flow %s errored: %v", e.Step, e.Flow, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// FailedStep returns the name of the step err stopped at, if any.
func FailedStep(err error) string {
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.Step
	}
	return ""
}

type Engine struct {
	flows    map[string]Flow
	recorder Recorder
	limiter  *Limiter
}

func NewEngine(recorder Recorder, limiter *Limiter, flows ...Flow) *Engine {
	m := map[string]Flow{}
	for _, f := range flows {
		m[f.Name()] = f
	}
	if limiter == nil {
		limiter = NewLimiter(DefaultMaxConcurrentRuns)
	}
	return &Engine{flows: m, recorder: recorder, limiter: limiter}
}

// Flows lists the registered flow names in sorted order.
func (e *Engine) Flows() []string {
	names := make([]string, 0, len(e.flows))
	for name := range e.flows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Engine) Has(flowName string) bool {
	_, ok := e.flows[flowName]
	return ok
}

// Run executes every step of flowName in order, stopping at the first
// error. The run is recorded from start to finish, including failures.
func (e *Engine) Run(flowName string, fc *FlowContext) error {
	f, exists := e.flows[flowName]
	if !exists {
		return apperrors.InvalidInput(fmt.Sprintf("unsupported flow: %v", flowName))
	}
	if fc.Ctx == nil {
		fc.Ctx = context.Background()
	}

	return e.limiter.Run(fc.Ctx, func() error {
		return e.run(f, fc)
	})
}

func (e *Engine) run(f Flow, fc *FlowContext) (err error) {
	fc.StartedAt = time.Now().UTC()
	e.recorder.RunStarted(fc.Ctx, RunInfo{
		ID:        fc.RunID,
		Flow:      f.Name(),
		Source:    fc.Source,
		RequestID: fc.RequestID,
		StartedAt: fc.StartedAt,
	})
	defer func() {
		e.recorder.RunFinished(fc.Ctx, fc.RunID, time.Now().UTC(), err)
	}()

	for _, step := range f.Steps() {
		if ctxErr := fc.Ctx.Err(); ctxErr != nil {
			return &RunError{RunID: fc.RunID, Flow: f.Name(), Step: step.Name, Err: apperrors.Timeout(ctxErr.Error())}
		}

		started := time.Now()
		stepErr := step.Execute(fc)
		e.recorder.StepFinished(fc.Ctx, fc.RunID, StepResult{
			Name:      step.Name,
			StartedAt: started.UTC(),
			Duration:  time.Since(started),
			Err:       stepErr,
		})
		if stepErr != nil {
			return &RunError{RunID: fc.RunID, Flow: f.Name(), Step: step.Name, Err: stepErr}
		}
	}
	return nil
}
