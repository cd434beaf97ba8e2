package storage

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"unislay-landing/pkg/landing"
)

const subscribersCollection = "subscribers"

// Mongo stores subscribers in a collection with a unique index on email.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewMongo wraps a connected client. The store takes ownership of client.
func NewMongo(client *mongo.Client, database string, logger *slog.Logger) *Mongo {
	return &Mongo{
		client: client,
		coll:   client.Database(database).Collection(subscribersCollection),
		logger: logger,
	}
}

// Create inserts a subscriber document.
func (m *Mongo) Create(ctx context.Context, email string) (*landing.Subscriber, error) {
	sub := newSubscriber(email)
	if _, err := m.coll.InsertOne(ctx, sub); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("insert subscriber: %w", landing.ErrAlreadySubscribed)
		}
		return nil, landing.NewStoreError("insert", err)
	}

	m.logger.Info("Subscriber saved", "id", sub.ID, "email", email)
	return sub, nil
}

// Migrate creates the unique email index. Without it, uniqueness is not enforced.
func (m *Mongo) Migrate(ctx context.Context) error {
	name, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	m.logger.Info("Index ensured", "collection", subscribersCollection, "index", name)
	return nil
}

// Ping checks server connectivity.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	return m.client.Disconnect(context.Background())
}
