// Package storage handles persistence of subscribers.
//
// Every backend enforces email uniqueness in the backing system itself, so
// concurrent creates for the same address resolve to exactly one record and
// landing.ErrAlreadySubscribed for the rest.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"unislay-landing/pkg/landing"
)

// Backend is a subscriber store with its lifecycle hooks.
type Backend interface {
	// Create persists a new subscriber. It returns an error matching
	// landing.ErrAlreadySubscribed for known emails and a *landing.StoreError
	// for infrastructure failures.
	Create(ctx context.Context, email string) (*landing.Subscriber, error)
	// Migrate prepares schema or indexes. It is safe to call repeatedly.
	Migrate(ctx context.Context) error
	// Ping checks connectivity.
	Ping(ctx context.Context) error
	Close() error
}

func newSubscriber(email string) *landing.Subscriber {
	return &landing.Subscriber{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
}
