package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectTimeout    = 10 * time.Second
	disconnectTimeout = 10 * time.Second
	pingTimeout       = 5 * time.Second
)

var ErrNoClient = errors.New("mongo client is nil")

type MongoStore struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// NewMongoStore connects to uri and verifies the primary is reachable.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri required")
	}
	if dbName == "" {
		return nil, errors.New("mongo database name required")
	}

	clientOpts := options.Client().ApplyURI(uri).
		SetMaxPoolSize(100).
		SetServerSelectionTimeout(connectTimeout)

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, err
	}

	return &MongoStore{
		Client: client,
		DB:     client.Database(dbName),
	}, nil
}

func (m *MongoStore) Close(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return nil
	}
	disconnectCtx, cancel := context.WithTimeout(ctx, disconnectTimeout)
	defer cancel()
	return m.Client.Disconnect(disconnectCtx)
}

// Ping backs the health check.
func (m *MongoStore) Ping(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return ErrNoClient
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return m.Client.Ping(pingCtx, readpref.Primary())
}
