package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"unislay-landing/pkg/landing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// raceCreate runs n concurrent creates for email and counts outcomes.
func raceCreate(t *testing.T, b Backend, email string, n int) (created, duplicates int64) {
	t.Helper()

	var wg sync.WaitGroup
	start := make(chan struct{})
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := b.Create(context.Background(), email)
			switch {
			case err == nil:
				atomic.AddInt64(&created, 1)
			case landing.IsDuplicate(err):
				atomic.AddInt64(&duplicates, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()
	return created, duplicates
}

func TestMemoryCreate(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	sub, err := m.Create(ctx, "john.doe@example.com")
	require.NoError(t, err)
	assert.Equal(t, "john.doe@example.com", sub.Email)
	assert.NotEmpty(t, sub.ID)
	assert.False(t, sub.CreatedAt.IsZero())

	_, err = m.Create(ctx, "john.doe@example.com")
	require.Error(t, err)
	assert.True(t, landing.IsDuplicate(err))
	assert.False(t, landing.IsStoreError(err))

	stored, ok := m.Lookup("john.doe@example.com")
	require.True(t, ok)
	assert.Equal(t, sub.CreatedAt, stored.CreatedAt, "created_at must not change on duplicate")
	assert.Equal(t, 1, m.Len())
}

func TestMemoryCaseSensitive(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Create(ctx, "Jane@Example.com")
	require.NoError(t, err)
	_, err = m.Create(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
}

func TestMemoryCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemory().Create(ctx, "a@b.co")
	require.Error(t, err)
	assert.True(t, landing.IsStoreError(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryConcurrentCreate(t *testing.T) {
	m := NewMemory()

	created, duplicates := raceCreate(t, m, "x@y.com", 50)

	assert.Equal(t, int64(1), created)
	assert.Equal(t, int64(49), duplicates)
	assert.Equal(t, 1, m.Len())
}

func TestMemoryConcurrentDistinctEmails(t *testing.T) {
	m := NewMemory()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Create(context.Background(), fmt.Sprintf("user%d@example.com", i))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, m.Len())
}

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	l := NewLocal(filepath.Join(t.TempDir(), "data"), []byte("test-salt"), testLogger())
	require.NoError(t, l.Migrate(context.Background()))
	return l
}

func TestLocalCreate(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	sub, err := l.Create(ctx, "test@example.com")
	require.NoError(t, err)

	loaded, err := l.Load("test@example.com")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, loaded.ID)
	assert.Equal(t, "test@example.com", loaded.Email)
	assert.True(t, sub.CreatedAt.Equal(loaded.CreatedAt))

	_, err = l.Create(ctx, "test@example.com")
	require.Error(t, err)
	assert.True(t, landing.IsDuplicate(err))

	entries, err := os.ReadDir(l.path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "sub-"))
	assert.NotContains(t, entries[0].Name(), "example", "filenames must not expose addresses")
}

func TestLocalConcurrentCreate(t *testing.T) {
	l := newTestLocal(t)

	created, duplicates := raceCreate(t, l, "x@y.com", 25)

	assert.Equal(t, int64(1), created)
	assert.Equal(t, int64(24), duplicates)

	entries, err := os.ReadDir(l.path)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocalMissingDirectory(t *testing.T) {
	l := NewLocal(filepath.Join(t.TempDir(), "missing"), []byte("salt"), testLogger())

	assert.Error(t, l.Ping(context.Background()))

	_, err := l.Create(context.Background(), "a@b.co")
	require.Error(t, err)
	assert.True(t, landing.IsStoreError(err))
	assert.False(t, landing.IsDuplicate(err))
}

func TestTokenFromEmail(t *testing.T) {
	salt := []byte("salt")

	a := TokenFromEmail(salt, "a@b.co")
	assert.Len(t, a, 64)
	assert.Equal(t, a, TokenFromEmail(salt, "a@b.co"))
	assert.NotEqual(t, a, TokenFromEmail(salt, "A@b.co"))
	assert.NotEqual(t, a, TokenFromEmail([]byte("other"), "a@b.co"))
}

func TestSubscriberKey(t *testing.T) {
	valid := strings.Repeat("ab", 32)

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "valid", token: valid, want: "sub-" + valid + ".json"},
		{name: "too short", token: "abc", want: ""},
		{name: "uppercase hex", token: strings.Repeat("AB", 32), want: ""},
		{name: "path traversal", token: "../" + valid[3:], want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SubscriberKey(tt.token))
		})
	}
}

func TestErrorClassifiers(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23502"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))

	assert.True(t, isPreconditionFailed(fmt.Errorf("close: %w", &googleapi.Error{Code: http.StatusPreconditionFailed})))
	assert.False(t, isPreconditionFailed(&googleapi.Error{Code: http.StatusServiceUnavailable}))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, Config{Backend: BackendMemory}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, b)

	b, err = Open(ctx, Config{Backend: BackendLocal, LocalPath: t.TempDir()}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &Local{}, b)

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "unknown backend", cfg: Config{Backend: "dynamo"}},
		{name: "local without path", cfg: Config{Backend: BackendLocal}},
		{name: "gcs without bucket", cfg: Config{Backend: BackendGCS}},
		{name: "mongo without uri", cfg: Config{Backend: BackendMongo}},
		{name: "postgres with bad url", cfg: Config{Backend: BackendPostgres, DatabaseURL: "://bad"}},
		{name: "redis with bad url", cfg: Config{Backend: BackendRedis, RedisURL: "ftp://nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(ctx, tt.cfg, testLogger())
			assert.Error(t, err)
		})
	}
}
