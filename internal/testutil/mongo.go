// Package testutil connects tests to a real MongoDB. Tests that use it are
// skipped unless TEST_MONGO_URI is set.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"ordernorm/pkg/client"
	"ordernorm/pkg/config"
	"ordernorm/pkg/logger"
)

const (
	EnvMongoURI     = "TEST_MONGO_URI"
	EnvDatabaseName = "TEST_DB_NAME"

	DefaultDatabaseName = "ordernorm_test"
	ConnectionTimeout   = 10 * time.Second
)

// MongoHelper owns one connection and one scratch database per test.
type MongoHelper struct {
	conn     *client.Client
	Database *mongo.Database
}

// NewMongoHelper connects to TEST_MONGO_URI or skips the test. The database
// is emptied before the test and again on cleanup.
func NewMongoHelper(t *testing.T) *MongoHelper {
	t.Helper()

	uri := os.Getenv(EnvMongoURI)
	if uri == "" {
		t.Skipf("%s not set", EnvMongoURI)
	}
	name := os.Getenv(EnvDatabaseName)
	if name == "" {
		name = DefaultDatabaseName
	}

	conn := client.NewClient()
	if err := conn.ConnectMongo(uri, "ordernorm-tests", ConnectionTimeout); err != nil {
		t.Fatalf("mongo: %v", err)
	}

	m := &MongoHelper{conn: conn, Database: conn.Mongo.Database(name)}
	m.CleanDatabase(t)
	t.Cleanup(func() {
		m.CleanDatabase(t)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := conn.Close(ctx); err != nil {
			t.Logf("mongo disconnect: %v", err)
		}
	})
	return m
}

// Config is a service config bound to the helper's connection.
func (m *MongoHelper) Config() *config.Config {
	return &config.Config{
		ServiceName:       "ordernorm-tests",
		MongoDatabaseName: m.Database.Name(),
		AuditEnabled:      true,
		ReadTimeout:       config.DefaultReadTimeout,
		WriteTimeout:      config.DefaultWriteTimeout,
		Log:               logger.Discard(),
		Client:            m.conn,
	}
}

func (m *MongoHelper) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), ConnectionTimeout)
}

// CleanDatabase drops every collection in the test database.
func (m *MongoHelper) CleanDatabase(t *testing.T) {
	t.Helper()
	ctx, cancel := m.ctx()
	defer cancel()

	names, err := m.Database.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		t.Fatalf("list collections: %v", err)
	}
	for _, name := range names {
		if err := m.Database.Collection(name).Drop(ctx); err != nil {
			t.Fatalf("drop %s: %v", name, err)
		}
	}
}

// Count returns the number of documents in collection matching filter.
func (m *MongoHelper) Count(t *testing.T, collection string, filter bson.M) int64 {
	t.Helper()
	ctx, cancel := m.ctx()
	defer cancel()

	n, err := m.Database.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		t.Fatalf("count %s: %v", collection, err)
	}
	return n
}
