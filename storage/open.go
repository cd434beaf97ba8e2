package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"
	"github.com/codeGROOVE-dev/retry"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendLocal    = "local"
	BackendGCS      = "gcs"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendRedis    = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Backend       string
	LocalPath     string
	Bucket        string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
	RedisURL      string
	Salt          []byte
}

// connectAttempts bounds retries while establishing backend connections.
const connectAttempts = 3

// Open connects to the configured backend.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Backend, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemory(), nil

	case BackendLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New("local backend requires a storage path")
		}
		return NewLocal(cfg.LocalPath, cfg.Salt, logger), nil

	case BackendGCS:
		if cfg.Bucket == "" {
			return nil, errors.New("gcs backend requires a bucket")
		}
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		return NewGCS(client, cfg.Bucket, cfg.Salt, logger), nil

	case BackendPostgres:
		poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse database url: %w", err)
		}
		var pool *pgxpool.Pool
		err = connect(ctx, logger, "postgres", func() error {
			p, err := pgxpool.NewWithConfig(ctx, poolCfg)
			if err != nil {
				return err
			}
			if err := p.Ping(ctx); err != nil {
				p.Close()
				return err
			}
			pool = p
			return nil
		})
		if err != nil {
			return nil, err
		}
		return NewPostgres(pool, logger), nil

	case BackendMongo:
		if cfg.MongoURI == "" {
			return nil, errors.New("mongo backend requires a connection uri")
		}
		client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI).SetConnectTimeout(10 * time.Second))
		if err != nil {
			return nil, fmt.Errorf("create mongo client: %w", err)
		}
		err = connect(ctx, logger, "mongo", func() error {
			return client.Ping(ctx, nil)
		})
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return NewMongo(client, cfg.MongoDatabase, logger), nil

	case BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		err = connect(ctx, logger, "redis", func() error {
			return client.Ping(ctx).Err()
		})
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return NewRedis(client, logger), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func connect(ctx context.Context, logger *slog.Logger, name string, fn func() error) error {
	err := retry.Do(fn,
		retry.Attempts(connectAttempts),
		retry.Delay(time.Second),
		retry.MaxDelay(10*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.Info("Retrying connection after error", "backend", name, "attempt", n, "error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("connect %s: %w", name, err)
	}
	return nil
}
