package client

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client holds the long-lived connections of a service process. Fields stay
// nil for backends the process does not use.
type Client struct {
	Mongo *mongo.Client
}

func NewClient() *Client {
	return &Client{}
}

// ConnectMongo dials uri and waits for the primary to answer a ping, both
// within timeout.
func (c *Client) ConnectMongo(uri, appName string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetAppName(appName).
		SetServerSelectionTimeout(timeout)
	mc, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	if err := mc.Ping(ctx, readpref.Primary()); err != nil {
		_ = mc.Disconnect(context.Background())
		return fmt.Errorf("ping mongo: %w", err)
	}
	c.Mongo = mc
	return nil
}

// Close disconnects whatever is open. It is a no-op on a nil Client.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Mongo == nil {
		return nil
	}
	err := c.Mongo.Disconnect(ctx)
	c.Mongo = nil
	return err
}
