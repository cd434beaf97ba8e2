package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"unislay-landing/pkg/landing"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Postgres stores subscribers in a table with a UNIQUE email constraint.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres wraps a connection pool. The store takes ownership of pool.
func NewPostgres(pool *pgxpool.Pool, logger *slog.Logger) *Postgres {
	return &Postgres{pool: pool, logger: logger}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Create inserts a subscriber row.
func (p *Postgres) Create(ctx context.Context, email string) (*landing.Subscriber, error) {
	sub := newSubscriber(email)
	err := p.pool.QueryRow(ctx,
		"INSERT INTO subscribers (id, email, created_at) VALUES ($1, $2, $3) RETURNING created_at",
		sub.ID, sub.Email, sub.CreatedAt,
	).Scan(&sub.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert subscriber: %w", landing.ErrAlreadySubscribed)
		}
		return nil, landing.NewStoreError("insert", err)
	}

	p.logger.Info("Subscriber saved", "id", sub.ID, "email", email)
	return sub, nil
}

// Migrate applies the embedded goose migrations.
func (p *Postgres) Migrate(ctx context.Context) error {
	// goose needs database/sql; this wrapper shares the pool's connections.
	db := stdlib.OpenDBFromPool(p.pool)
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			p.logger.Warn("Failed to close migration handle", "error", err)
		}
	}(db)

	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		p.logger.Info("Migration applied", "source", r.Source.Path, "duration", r.Duration)
	}
	return nil
}

// Ping checks database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
