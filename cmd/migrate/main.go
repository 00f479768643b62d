// Command migrate creates the audit collections, their validators and
// indexes. It is safe to run on every deploy.
package main

import (
	"context"
	"os"
	"time"

	mongoMigration "ordernorm/internal/migrations/mongo"
	"ordernorm/pkg/config"
)

const (
	JobName          = "mongo-migration"
	migrationTimeout = 2 * time.Minute
)

func main() {
	os.Exit(run(config.Load(JobName)))
}

func run(cfg *config.Config) int {
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
	defer cancel()

	start := time.Now()
	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
		cfg.Log.Error("migration failed", "database", cfg.MongoDatabaseName, "error", err)
		return 1
	}
	cfg.Log.Info("migration finished", "database", cfg.MongoDatabaseName, "took", time.Since(start))
	return 0
}
