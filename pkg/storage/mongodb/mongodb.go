// Package mongodb implements storage.Storage on top of MongoDB.
package mongodb

import (
	"context"
	"fmt"
	"radiomirchi/pkg/storage"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	missionsCollection = "missions"
)

// Options defines how to reach the MongoDB deployment.
type Options struct {
	// URI is the connection string, e.g. mongodb://mongo:27017.
	URI string
	// Database is the database holding the application collections.
	Database string
	// ConnectTimeout bounds connection establishment and server selection.
	ConnectTimeout time.Duration
	// MaxPoolSize limits the connections kept per server; zero keeps the driver default.
	MaxPoolSize uint64
}

// Mongo implements storage.Storage.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ storage.Storage = (*Mongo)(nil)

// New connects to MongoDB and verifies the connection with a ping.
func New(ctx context.Context, opts Options) (*Mongo, error) {
	clientOpts := options.Client().ApplyURI(opts.URI)
	if opts.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(opts.ConnectTimeout)
		clientOpts.SetServerSelectionTimeout(opts.ConnectTimeout)
	}
	if opts.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(opts.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("could not connect to mongodb: %w", err)
	}

	m := &Mongo{
		client: client,
		db:     client.Database(opts.Database),
	}
	if err := m.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)

		return nil, err
	}

	return m, nil
}

func (m *Mongo) missions() *mongo.Collection {
	return m.db.Collection(missionsCollection)
}

// Ping checks that the primary is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("could not ping mongodb: %w", err)
	}

	return nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("could not disconnect from mongodb: %w", err)
	}

	return nil
}

// EnsureIndexes creates the indexes used by mission queries.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.missions().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_id_created_at"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("status_created_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("could not create mission indexes: %w", err)
	}

	return nil
}
