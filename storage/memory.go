package storage

import (
	"context"
	"fmt"
	"sync"

	"unislay-landing/pkg/landing"
)

// Memory is an in-process store for development and tests.
type Memory struct {
	subs map[string]*landing.Subscriber
	mu   sync.Mutex
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{subs: make(map[string]*landing.Subscriber)}
}

// Create stores a subscriber unless the email is already present.
func (m *Memory) Create(ctx context.Context, email string) (*landing.Subscriber, error) {
	if err := ctx.Err(); err != nil {
		return nil, landing.NewStoreError("create", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.subs[email]; exists {
		return nil, fmt.Errorf("create %s: %w", email, landing.ErrAlreadySubscribed)
	}
	sub := newSubscriber(email)
	m.subs[email] = sub

	out := *sub
	return &out, nil
}

// Lookup returns the stored subscriber for email, if any.
func (m *Memory) Lookup(email string) (landing.Subscriber, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[email]
	if !ok {
		return landing.Subscriber{}, false
	}
	return *sub, true
}

// Len returns the number of stored subscribers.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// Migrate is a no-op.
func (*Memory) Migrate(context.Context) error { return nil }

// Ping always succeeds.
func (*Memory) Ping(context.Context) error { return nil }

// Close is a no-op.
func (*Memory) Close() error { return nil }
