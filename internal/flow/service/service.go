package service

import (
	"context"

	flowcore "ordernorm/internal/flow/core"
	"ordernorm/pkg/logger"
	"ordernorm/pkg/value"
)

const (
	SourceHTTP  = "http"
	SourceKafka = "kafka"
	SourceCLI   = "cli"
)

// Origin says where a run was triggered from.
type Origin struct {
	Source    string
	RequestID string
}

type RunResult struct {
	RunID  string      `json:"run_id"`
	Flow   string      `json:"flow"`
	Output value.Value `json:"output"`
}

type FlowService struct {
	engine *flowcore.Engine
	log    *logger.Logger
}

func NewFlowService(engine *flowcore.Engine, log *logger.Logger) *FlowService {
	return &FlowService{
		engine: engine,
		log:    log,
	}
}

// Execute runs flowName over input. The result carries the run id even
// when the run fails, so callers can point at the audit record. Unknown
// flows never start a run and return no result.
func (s *FlowService) Execute(ctx context.Context, flowName string, input value.Value, origin Origin) (*RunResult, error) {
	fc := flowcore.NewFlowContext(ctx, input, s.log)
	fc.Source = origin.Source
	fc.RequestID = origin.RequestID

	result := &RunResult{RunID: fc.RunID, Flow: flowName}
	if err := s.engine.Run(flowName, fc); err != nil {
		if !s.engine.Has(flowName) {
			return nil, err
		}
		return result, err
	}
	result.Output = fc.Output
	return result, nil
}

func (s *FlowService) GetAvailableFlows() []string {
	return s.engine.Flows()
}

func (s *FlowService) Has(flowName string) bool {
	return s.engine.Has(flowName)
}
