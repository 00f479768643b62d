// Package mongo brings the audit database to the shape the repositories
// expect. Every step is idempotent.
package mongo

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ordernorm/internal/audit/repository"
	"ordernorm/internal/migrations/mongo/validators"
	"ordernorm/pkg/logger"
)

// FlowRunAuditIndexes serve the run listing (by flow or status, newest
// first) and the lookup by request id.
var FlowRunAuditIndexes = []mongo.IndexModel{
	{Keys: bson.D{{Key: "flow", Value: 1}, {Key: "started_at", Value: -1}}},
	{Keys: bson.D{{Key: "status", Value: 1}, {Key: "started_at", Value: -1}}},
	{Keys: bson.D{{Key: "request_id", Value: 1}}, Options: options.Index().SetSparse(true)},
}

type CollectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() map[string]CollectionDef {
	return map[string]CollectionDef{
		repository.CollectionName: {Indexes: FlowRunAuditIndexes, Validator: validators.FlowRunAuditValidator},
	}
}

// RunMigration creates missing collections, refreshes validators on existing
// ones and ensures indexes, collection by collection in name order.
func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	defs := Collections()

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def := defs[name]
		created, err := ensureCollection(ctx, db, name, def.Validator)
		if err != nil {
			return fmt.Errorf("collection %s: %w", name, err)
		}
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, def.Indexes); err != nil {
			return fmt.Errorf("indexes on %s: %w", name, err)
		}
		log.Info("collection migrated", "collection", name, "created", created, "indexes", len(def.Indexes))
	}
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) (bool, error) {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return false, err
	}
	if len(existing) == 0 {
		return true, db.CreateCollection(ctx, name, options.CreateCollection().SetValidator(validator))
	}
	cmd := bson.D{{Key: "collMod", Value: name}, {Key: "validator", Value: validator}}
	return false, db.RunCommand(ctx, cmd).Err()
}
