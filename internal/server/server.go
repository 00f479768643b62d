package server

import (
	"fmt"

	auditrecorder "ordernorm/internal/audit/recorder"
	auditrepository "ordernorm/internal/audit/repository"
	flowcore "ordernorm/internal/flow/core"
	"ordernorm/internal/flow/flows"
	flowservice "ordernorm/internal/flow/service"
	"ordernorm/pkg/client"
	"ordernorm/pkg/config"
	"ordernorm/pkg/logger"
	"ordernorm/pkg/mapping"
	"ordernorm/pkg/normalize"
)

// FlowDeps builds the flow collaborators from cfg. The billing and table
// clients are only created when their base URLs are set.
func FlowDeps(cfg *config.Config) (flows.Deps, error) {
	deps := flows.Deps{
		Pipeline: normalize.New(cfg.NormalizeOptions()),
		Mapper:   mapping.NewMapper(cfg.Log),
		Registry: mapping.DefaultRegistry,
		Merge:    mapping.DefaultMergeSpec,
	}

	if cfg.RulesFile != "" {
		rules, err := mapping.LoadRulesFile(cfg.RulesFile, deps.Registry)
		if err != nil {
			return flows.Deps{}, fmt.Errorf("failed to load default mapping rules: %w", err)
		}
		deps.DefaultRules = rules
		cfg.Log.Info("Default mapping rules loaded", "file", cfg.RulesFile, "rules", len(rules))
	}

	if cfg.BillingEnabled() {
		deps.Billing = client.NewBillingClient(cfg.BillingConfig())
		cfg.Log.Info("Billing API client configured", "base_url", cfg.BillingBaseURL)
	}
	if cfg.TablesEnabled() {
		deps.Tables = client.NewTablesClient(cfg.TablesConfig())
		cfg.Log.Info("Tables API client configured", "base_url", cfg.TablesBaseURL)
	}
	return deps, nil
}

// AuditRepository picks the Mongo store when audit is enabled and an
// in-memory one otherwise. cfg.SetMongo must have been called first in the
// Mongo case.
func AuditRepository(cfg *config.Config) auditrepository.FlowRunRepository {
	if cfg.AuditEnabled && cfg.Client.Mongo != nil {
		return auditrepository.NewMongoFlowRunRepository(cfg)
	}
	return auditrepository.NewMemoryFlowRunRepository(auditrepository.DefaultMemoryRetention)
}

// Notifier returns the push client for failed-run alerts, or nil when no
// notification gateway is configured.
func Notifier(cfg *config.Config) auditrecorder.Notifier {
	if !cfg.NotifyEnabled() {
		return nil
	}
	cfg.Log.Info("Failure notifications configured", "base_url", cfg.NotifyBaseURL)
	return client.NewNotifyClient(cfg.NotifyConfig())
}

// NewFlowService wires every flow to an engine that logs runs and, when
// repo is set, records them. A non-nil notifier is alerted on every failed
// run.
func NewFlowService(deps flows.Deps, repo auditrepository.FlowRunRepository, notifier auditrecorder.Notifier, log *logger.Logger) *flowservice.FlowService {
	recorders := auditrecorder.Multi{flowcore.NewLogRecorder(log)}
	if repo != nil {
		recorders = append(recorders, auditrecorder.NewAuditRecorder(repo, log))
	}
	if notifier != nil {
		recorders = append(recorders, auditrecorder.NewNotifyRecorder(notifier, log))
	}

	var recorder flowcore.Recorder = recorders
	if len(recorders) == 1 {
		recorder = recorders[0]
	}

	engine := flowcore.NewEngine(recorder, flowcore.NewLimiter(flowcore.DefaultMaxConcurrentRuns), flows.All(deps)...)
	return flowservice.NewFlowService(engine, log)
}
