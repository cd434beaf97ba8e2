package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/codeGROOVE-dev/retry"
	"google.golang.org/api/googleapi"

	"unislay-landing/pkg/landing"
)

// GCS stores one object per subscriber in a Cloud Storage bucket.
// Objects are written with a DoesNotExist precondition, so the bucket
// rejects the second writer with HTTP 412.
type GCS struct {
	client *storage.Client
	logger *slog.Logger
	bucket string
	salt   []byte
}

// NewGCS creates a bucket-backed store. The caller owns client.
func NewGCS(client *storage.Client, bucket string, salt []byte, logger *slog.Logger) *GCS {
	return &GCS{client: client, bucket: bucket, salt: salt, logger: logger}
}

// isPreconditionFailed reports whether err is a GCS 412 response.
func isPreconditionFailed(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed
}

// Create writes a new subscriber object unless one already exists.
func (g *GCS) Create(ctx context.Context, email string) (*landing.Subscriber, error) {
	key := SubscriberKey(TokenFromEmail(g.salt, email))
	if key == "" {
		return nil, landing.NewStoreError("create", errors.New("invalid token format"))
	}

	sub := newSubscriber(email)
	data, err := json.MarshalIndent(sub, "", "  ")
	if err != nil {
		return nil, landing.NewStoreError("marshal", err)
	}

	obj := g.client.Bucket(g.bucket).Object(key).If(storage.Conditions{DoesNotExist: true})

	// A retried attempt that hits 412 may be racing our own earlier write
	// that succeeded server-side; it is reported as a duplicate either way.
	duplicate := false
	err = retry.Do(
		func() error {
			w := obj.NewWriter(ctx)
			w.ContentType = "application/json"
			if _, writeErr := w.Write(data); writeErr != nil {
				if closeErr := w.Close(); closeErr != nil {
					g.logger.Warn("Failed to close writer after error", "error", closeErr)
				}
				return fmt.Errorf("write to storage: %w", writeErr)
			}
			if closeErr := w.Close(); closeErr != nil {
				if isPreconditionFailed(closeErr) {
					duplicate = true
					return retry.Unrecoverable(closeErr)
				}
				return fmt.Errorf("close storage writer: %w", closeErr)
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(10*time.Second),
		retry.MaxJitter(time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, retryErr error) {
			g.logger.Info("Retrying save operation after error", "attempt", n, "key", key, "error", retryErr)
		}),
	)
	if err != nil {
		if duplicate {
			return nil, fmt.Errorf("create %s: %w", key, landing.ErrAlreadySubscribed)
		}
		return nil, landing.NewStoreError("save", fmt.Errorf("save after retries: %w", err))
	}

	g.logger.Info("Subscriber saved", "key", key, "email", email)
	return sub, nil
}

// Migrate is a no-op; the bucket is provisioned by deployment.
func (*GCS) Migrate(context.Context) error { return nil }

// Ping reads the bucket attributes.
func (g *GCS) Ping(ctx context.Context) error {
	if _, err := g.client.Bucket(g.bucket).Attrs(ctx); err != nil {
		return fmt.Errorf("bucket attrs: %w", err)
	}
	return nil
}

// Close releases the storage client.
func (g *GCS) Close() error {
	return g.client.Close()
}
