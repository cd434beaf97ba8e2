// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"unislay-landing/storage"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Mail providers.
const (
	MailMock     = "mock"
	MailGmail    = "gmail"
	MailBrevo    = "brevo"
	MailSMTP     = "smtp"
	MailPostmark = "postmark"
)

// Config holds all runtime settings.
type Config struct {
	Host        string   `env:"HOST" envDefault:"0.0.0.0"`
	Port        string   `env:"PORT" envDefault:"8080"`
	Env         string   `env:"APP_ENV" envDefault:"development"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	StaticDir   string   `env:"STATIC_DIR" envDefault:"./public"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	Store StoreConfig
	Mail  MailConfig
}

// StoreConfig selects the subscriber store.
type StoreConfig struct {
	Backend       string `env:"STORE_BACKEND"`
	LocalPath     string `env:"LOCAL_STORAGE" envDefault:"./data"`
	Bucket        string `env:"STORAGE_BUCKET"`
	KeySalt       string `env:"KEY_SALT"`
	DatabaseURL   string `env:"DATABASE_URL"`
	MongoURI      string `env:"MONGODB_URI"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"unislay"`
	RedisURL      string `env:"REDIS_URL"`
}

// MailConfig selects the notifier and welcome email settings.
type MailConfig struct {
	Provider        string `env:"MAIL_PROVIDER"`
	From            string `env:"MAIL_FROM"`
	FromName        string `env:"MAIL_FROM_NAME" envDefault:"The Unislay Team"`
	WelcomeSubject  string `env:"WELCOME_SUBJECT" envDefault:"Welcome to Unislay!"`
	TemplatePath    string `env:"WELCOME_TEMPLATE_PATH"`
	GoogleCredsJSON string `env:"GOOGLE_CREDENTIALS_JSON"`
	BrevoAPIKey     string `env:"BREVO_API_KEY"`
	SMTPHost        string `env:"SMTP_HOST"`
	SMTPPort        int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser        string `env:"SMTP_USER"`
	SMTPPassword    string `env:"SMTP_PASSWORD"`
	PostmarkServer  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccount string `env:"POSTMARK_ACCOUNT_TOKEN"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// The .env file is optional.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults infers the store backend and mail provider from what is configured.
// With nothing configured it falls back to local development mode.
func (c *Config) applyDefaults() {
	if c.Store.Backend == "" {
		switch {
		case c.Store.DatabaseURL != "":
			c.Store.Backend = storage.BackendPostgres
		case c.Store.MongoURI != "":
			c.Store.Backend = storage.BackendMongo
		case c.Store.RedisURL != "":
			c.Store.Backend = storage.BackendRedis
		case c.Store.Bucket != "":
			c.Store.Backend = storage.BackendGCS
		default:
			c.Store.Backend = storage.BackendLocal
		}
	}

	if c.Mail.Provider == "" {
		switch {
		case c.Mail.BrevoAPIKey != "":
			c.Mail.Provider = MailBrevo
		case c.Mail.PostmarkServer != "":
			c.Mail.Provider = MailPostmark
		case c.Mail.SMTPHost != "":
			c.Mail.Provider = MailSMTP
		case c.Mail.GoogleCredsJSON != "":
			c.Mail.Provider = MailGmail
		default:
			c.Mail.Provider = MailMock
		}
	}
}

// Validate checks settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	var errs []error

	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		errs = append(errs, fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env))
	}

	switch c.Store.Backend {
	case storage.BackendMemory, storage.BackendLocal:
		if c.IsProduction() {
			errs = append(errs, fmt.Errorf("STORE_BACKEND %q is not durable enough for production", c.Store.Backend))
		}
	case storage.BackendGCS:
		if c.Store.Bucket == "" {
			errs = append(errs, errors.New("STORAGE_BUCKET required for gcs backend"))
		}
	case storage.BackendPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL required for postgres backend"))
		}
	case storage.BackendMongo:
		if c.Store.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI required for mongo backend"))
		}
	case storage.BackendRedis:
		if c.Store.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL required for redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend))
	}
	if c.Store.Backend == storage.BackendGCS || c.Store.Backend == storage.BackendLocal {
		if c.Store.KeySalt == "" && c.IsProduction() {
			errs = append(errs, errors.New("KEY_SALT required for object storage in production"))
		}
	}

	switch c.Mail.Provider {
	case MailMock:
		if c.IsProduction() {
			errs = append(errs, errors.New("MAIL_PROVIDER mock is not allowed in production"))
		}
	case MailGmail:
	case MailBrevo:
		if c.Mail.BrevoAPIKey == "" {
			errs = append(errs, errors.New("BREVO_API_KEY required for brevo provider"))
		}
	case MailSMTP:
		if c.Mail.SMTPHost == "" {
			errs = append(errs, errors.New("SMTP_HOST required for smtp provider"))
		}
	case MailPostmark:
		if c.Mail.PostmarkServer == "" || c.Mail.PostmarkAccount == "" {
			errs = append(errs, errors.New("POSTMARK_SERVER_TOKEN and POSTMARK_ACCOUNT_TOKEN required for postmark provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_PROVIDER %q", c.Mail.Provider))
	}
	if c.Mail.Provider != MailMock && c.Mail.Provider != MailGmail && c.Mail.From == "" {
		errs = append(errs, errors.New("MAIL_FROM required"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether internal error detail must be hidden.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// StorageConfig converts the store settings for storage.Open.
func (c *Config) StorageConfig() storage.Config {
	salt := c.Store.KeySalt
	if salt == "" {
		salt = "unislay-dev-salt"
	}
	return storage.Config{
		Backend:       c.Store.Backend,
		LocalPath:     c.Store.LocalPath,
		Bucket:        c.Store.Bucket,
		DatabaseURL:   c.Store.DatabaseURL,
		MongoURI:      c.Store.MongoURI,
		MongoDatabase: c.Store.MongoDatabase,
		RedisURL:      c.Store.RedisURL,
		Salt:          []byte(salt),
	}
}
