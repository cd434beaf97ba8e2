package config

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unislay-landing/storage"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HOST", "PORT", "APP_ENV", "LOG_LEVEL", "STATIC_DIR", "CORS_ORIGINS",
		"STORE_BACKEND", "LOCAL_STORAGE", "STORAGE_BUCKET", "KEY_SALT", "DATABASE_URL",
		"MONGODB_URI", "MONGODB_DATABASE", "REDIS_URL",
		"MAIL_PROVIDER", "MAIL_FROM", "MAIL_FROM_NAME", "WELCOME_SUBJECT", "WELCOME_TEMPLATE_PATH",
		"GOOGLE_CREDENTIALS_JSON", "BREVO_API_KEY", "SMTP_HOST", "SMTP_PORT", "SMTP_USER",
		"SMTP_PASSWORD", "POSTMARK_SERVER_TOKEN", "POSTMARK_ACCOUNT_TOKEN",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	// Run from an empty directory so no .env file is picked up.
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, storage.BackendLocal, cfg.Store.Backend)
	assert.Equal(t, MailMock, cfg.Mail.Provider)
	assert.Equal(t, "Welcome to Unislay!", cfg.Mail.WelcomeSubject)
	assert.Equal(t, 587, cfg.Mail.SMTPPort)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.NotEmpty(t, cfg.StorageConfig().Salt)
}

func TestLoadInfersBackends(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("MAIL_FROM", "hello@unislay.com")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:52811")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, storage.BackendMongo, cfg.Store.Backend)
	assert.Equal(t, MailSMTP, cfg.Mail.Provider)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:52811"}, cfg.CORSOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadProductionRequirements(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not durable enough for production")
	assert.Contains(t, err.Error(), "mock is not allowed in production")
}

func TestLoadProductionValid(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://localhost/unislay")
	t.Setenv("BREVO_API_KEY", "key")
	t.Setenv("MAIL_FROM", "hello@unislay.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, storage.BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, MailBrevo, cfg.Mail.Provider)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown env",
			mutate:  func(c *Config) { c.Env = "staging" },
			wantErr: "APP_ENV must be",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Store.Backend = "dynamo" },
			wantErr: "unknown STORE_BACKEND",
		},
		{
			name:    "redis without url",
			mutate:  func(c *Config) { c.Store.Backend = storage.BackendRedis },
			wantErr: "REDIS_URL required",
		},
		{
			name: "postmark without tokens",
			mutate: func(c *Config) {
				c.Mail.Provider = MailPostmark
				c.Mail.From = "hello@unislay.com"
			},
			wantErr: "POSTMARK_SERVER_TOKEN",
		},
		{
			name: "smtp without from",
			mutate: func(c *Config) {
				c.Mail.Provider = MailSMTP
				c.Mail.SMTPHost = "smtp.example.com"
			},
			wantErr: "MAIL_FROM required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Env: EnvDevelopment}
			cfg.Store.Backend = storage.BackendMemory
			cfg.Mail.Provider = MailMock
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
