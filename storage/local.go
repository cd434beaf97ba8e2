package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"unislay-landing/pkg/landing"
)

// Local stores one JSON file per subscriber in a directory.
// Files are created with O_EXCL, so the filesystem arbitrates races.
type Local struct {
	logger *slog.Logger
	path   string
	salt   []byte
}

// NewLocal creates a directory-backed store.
func NewLocal(path string, salt []byte, logger *slog.Logger) *Local {
	return &Local{path: path, salt: salt, logger: logger}
}

// Create writes a new subscriber file, failing if one already exists.
func (l *Local) Create(ctx context.Context, email string) (*landing.Subscriber, error) {
	if err := ctx.Err(); err != nil {
		return nil, landing.NewStoreError("create", err)
	}

	key := SubscriberKey(TokenFromEmail(l.salt, email))
	if key == "" {
		return nil, landing.NewStoreError("create", errors.New("invalid token format"))
	}

	sub := newSubscriber(email)
	data, err := json.MarshalIndent(sub, "", "  ")
	if err != nil {
		return nil, landing.NewStoreError("marshal", err)
	}

	filePath := filepath.Join(l.path, key)
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create %s: %w", key, landing.ErrAlreadySubscribed)
		}
		return nil, landing.NewStoreError("create", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		if rmErr := os.Remove(filePath); rmErr != nil {
			l.logger.Warn("Failed to remove partial subscriber file", "path", filePath, "error", rmErr)
		}
		return nil, landing.NewStoreError("write", err)
	}
	if err := f.Close(); err != nil {
		return nil, landing.NewStoreError("close", err)
	}

	l.logger.Info("Subscriber saved to local storage", "path", filePath, "email", email)
	return sub, nil
}

// Load reads the subscriber stored for email.
func (l *Local) Load(email string) (*landing.Subscriber, error) {
	key := SubscriberKey(TokenFromEmail(l.salt, email))
	data, err := os.ReadFile(filepath.Join(l.path, key))
	if err != nil {
		return nil, fmt.Errorf("read from local storage: %w", err)
	}
	var sub landing.Subscriber
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, fmt.Errorf("unmarshal subscriber: %w", err)
	}
	return &sub, nil
}

// Migrate creates the storage directory.
func (l *Local) Migrate(context.Context) error {
	if err := os.MkdirAll(l.path, 0o755); err != nil {
		return fmt.Errorf("create local storage directory: %w", err)
	}
	return nil
}

// Ping checks that the storage directory exists.
func (l *Local) Ping(context.Context) error {
	info, err := os.Stat(l.path)
	if err != nil {
		return fmt.Errorf("stat local storage: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("local storage %s is not a directory", l.path)
	}
	return nil
}

// Close is a no-op.
func (*Local) Close() error { return nil }
