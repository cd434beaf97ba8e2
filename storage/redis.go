package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"unislay-landing/pkg/landing"
)

const redisKeyPrefix = "subscriber:"

// Redis stores each subscriber under its own key, created with SETNX.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedis wraps a connected client. The store takes ownership of client.
func NewRedis(client *redis.Client, logger *slog.Logger) *Redis {
	return &Redis{client: client, logger: logger}
}

// Create sets the subscriber key only if it does not exist yet.
func (r *Redis) Create(ctx context.Context, email string) (*landing.Subscriber, error) {
	sub := newSubscriber(email)
	data, err := json.Marshal(sub)
	if err != nil {
		return nil, landing.NewStoreError("marshal", err)
	}

	ok, err := r.client.SetNX(ctx, redisKeyPrefix+email, data, 0).Result()
	if err != nil {
		return nil, landing.NewStoreError("setnx", err)
	}
	if !ok {
		return nil, fmt.Errorf("setnx subscriber: %w", landing.ErrAlreadySubscribed)
	}

	r.logger.Info("Subscriber saved", "id", sub.ID, "email", email)
	return sub, nil
}

// Migrate is a no-op.
func (*Redis) Migrate(context.Context) error { return nil }

// Ping checks server connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
