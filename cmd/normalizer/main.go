package main

import (
	audithandler "ordernorm/internal/audit/handler"
	auditservice "ordernorm/internal/audit/service"
	flowhandler "ordernorm/internal/flow/handler"
	recordhandler "ordernorm/internal/records/handler"
	recordservice "ordernorm/internal/records/service"
	"ordernorm/internal/server"
	"ordernorm/pkg/app"
	"ordernorm/pkg/config"
	"ordernorm/pkg/contracts"
)

const ServiceName = "normalizer"

func main() {
	cfg := config.Load(ServiceName)
	if cfg.AuditEnabled {
		cfg.SetMongo()
	}

	cfg.Log.Info("Starting Normalizer service")
	serverApp := app.NewApplication(cfg)
	handlers := initServices(cfg, serverApp)
	serverApp.SetApp(healthHandler(cfg), handlers...)
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application) []contracts.Handler {
	deps, err := server.FlowDeps(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to build flow dependencies", "error", err)
	}

	auditRepo := server.AuditRepository(cfg)
	flows := server.NewFlowService(deps, auditRepo, server.Notifier(cfg), cfg.Log)

	// Assembled documents go to the same output topic as streamed records.
	var publisher recordservice.Publisher
	stream, err := server.NewStream(cfg, flows)
	if err != nil {
		cfg.Log.Fatal("Failed to configure Kafka stream", "error", err)
	}
	if stream != nil {
		publisher = stream.Producer
		serverApp.AddWorker("kafka-consumer", stream.Consumer)
		serverApp.AddCloser("kafka-producer", stream.Producer.Close)
		serverApp.AddCloser("kafka-metrics", func() error {
			stream.Metrics.Log(cfg.Log)
			return nil
		})
	}

	handlers := []contracts.Handler{
		recordhandler.NewRecordHandler(recordservice.NewRecordService(flows, publisher, cfg.Log), cfg.Log, cfg.MaxDocumentDepth),
		flowhandler.NewFlowHandler(flows, cfg.Log, cfg.MaxDocumentDepth),
		audithandler.NewFlowRunHandler(auditservice.NewFlowRunService(auditRepo, cfg.Log), cfg.Log),
	}

	cfg.Log.Info("Normalizer services initialized",
		"flows", flows.GetAvailableFlows(),
		"audit_enabled", cfg.AuditEnabled,
		"kafka_enabled", stream != nil,
		"notify_enabled", cfg.NotifyEnabled(),
	)
	return handlers
}

func healthHandler(cfg *config.Config) *recordhandler.HealthHandler {
	var checks []recordhandler.Check
	if cfg.Client.Mongo != nil {
		checks = append(checks, recordhandler.PingCheck("mongo", cfg.Client.Mongo))
	}
	return recordhandler.NewHealthHandler(cfg.Log, checks...)
}
