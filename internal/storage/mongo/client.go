// Package mongo implements the analytics record store on top of the
// simulator's MongoDB analytics collection.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config holds MongoDB connection settings.
type Config struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// DefaultConfig returns the settings the simulator writes to by default.
func DefaultConfig() Config {
	return Config{
		URI:            "mongodb://localhost:27017",
		Database:       "ctb-simulation",
		Collection:     "analytics",
		ConnectTimeout: 10 * time.Second,
	}
}

// Client wraps a connected mongo.Client and the analytics collection handle.
type Client struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Connect opens a client with the decimal-aware registry and pings the primary.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetRegistry(NewRegistry()).
		SetConnectTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Client{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Collection returns the analytics collection handle.
func (c *Client) Collection() *mongo.Collection {
	return c.collection
}

// EnsureIndexes creates the lookup indexes and the unique execution id index.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "analyticsType", Value: 1}, {Key: "exeId", Value: 1}, {Key: "timestamp", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "exeId", Value: 1}},
			Options: options.Index().
				SetName("uniq_execution").
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "analyticsType", Value: "execution-analytics"}}),
		},
	}
	if _, err := c.collection.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create analytics indexes: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
