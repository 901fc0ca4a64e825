package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoAppName = "storefront"

// MongoSettings describes the cart store connection. Zero values leave the
// driver's defaults, or whatever the URI sets, in place.
type MongoSettings struct {
	URI                    string
	Database               string
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	MaxPoolSize            uint64
	MinPoolSize            uint64
}

func (s MongoSettings) clientOptions() (*options.ClientOptions, error) {
	if s.URI == "" {
		return nil, errors.New("mongo: URI is required")
	}
	if s.Database == "" {
		return nil, errors.New("mongo: database name is required")
	}
	if s.MaxPoolSize > 0 && s.MinPoolSize > s.MaxPoolSize {
		return nil, fmt.Errorf("mongo: min pool size %d exceeds max pool size %d", s.MinPoolSize, s.MaxPoolSize)
	}

	opts := options.Client().ApplyURI(s.URI).SetAppName(mongoAppName)
	if s.ConnectTimeout > 0 {
		opts.SetConnectTimeout(s.ConnectTimeout)
	}
	if s.ServerSelectionTimeout > 0 {
		opts.SetServerSelectionTimeout(s.ServerSelectionTimeout)
	}
	if s.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(s.MaxPoolSize)
	}
	if s.MinPoolSize > 0 {
		opts.SetMinPoolSize(s.MinPoolSize)
	}
	return opts, nil
}

// ConnectMongoDB opens a client and returns the cart database once the
// server answers a ping. The client is disconnected if the ping fails.
func ConnectMongoDB(ctx context.Context, settings MongoSettings) (*mongo.Database, error) {
	opts, err := settings.clientOptions()
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return client.Database(settings.Database), nil
}
