// Package main runs the Unislay landing page service: the static site,
// the subscribe API and the welcome email.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"unislay-landing/config"
	"unislay-landing/email"
	"unislay-landing/server"
	"unislay-landing/storage"
	"unislay-landing/subscribe"
)

func main() {
	root := &cobra.Command{
		Use:           "landing",
		Short:         "Unislay landing page and subscription service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the landing page and subscribe API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), serve)
		},
	}
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Prepare the configured subscriber store and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), func(context.Context, *config.Config, storage.Backend, *slog.Logger) error {
				return nil
			})
		},
	}
	root.AddCommand(serveCmd, migrateCmd)
	// Running the binary with no subcommand serves, as Cloud Run expects.
	root.RunE = serveCmd.RunE

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("Fatal error", "error", err)
		stop()
		os.Exit(1)
	}
}

// run loads configuration, opens and migrates the store, then hands off to fn.
func run(ctx context.Context, fn func(context.Context, *config.Config, storage.Backend, *slog.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("Opening subscriber store", "backend", cfg.Store.Backend, "env", cfg.Env)
	store, err := storage.Open(ctx, cfg.StorageConfig(), logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close store", "error", err)
		}
	}()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}
	logger.Info("Subscriber store ready", "backend", cfg.Store.Backend)

	return fn(ctx, cfg, store, logger)
}

func serve(ctx context.Context, cfg *config.Config, store storage.Backend, logger *slog.Logger) error {
	provider, err := newProvider(ctx, cfg.Mail, logger)
	if err != nil {
		return fmt.Errorf("init mail provider: %w", err)
	}
	logger.Info("Mail provider ready", "provider", cfg.Mail.Provider)

	svc := subscribe.New(&subscribe.Config{
		Store:     store,
		Templates: newTemplateSource(cfg.Mail),
		Notifier:  provider,
		Logger:    logger,
		Subject:   cfg.Mail.WelcomeSubject,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	staticDir := cfg.StaticDir
	if staticDir != "" {
		if info, err := os.Stat(staticDir); err != nil || !info.IsDir() {
			logger.Warn("Static directory not found, serving API only", "dir", staticDir)
			staticDir = ""
		}
	}

	srv := server.New(&server.Config{
		Subscriber:  svc,
		Health:      store,
		Logger:      logger,
		Registry:    reg,
		StaticDir:   staticDir,
		CORSOrigins: cfg.CORSOrigins,
		Production:  cfg.IsProduction(),
	})
	return srv.ListenAndServe(ctx, cfg.Addr())
}

// newProvider builds the notifier named by cfg.Provider.
func newProvider(ctx context.Context, cfg config.MailConfig, logger *slog.Logger) (email.Provider, error) {
	switch cfg.Provider {
	case config.MailMock:
		logger.Info("Mock email mode enabled")
		return email.NewMockProvider(logger), nil
	case config.MailGmail:
		service, err := email.NewGmailService(ctx, cfg.GoogleCredsJSON)
		if err != nil {
			return nil, fmt.Errorf("init gmail service: %w", err)
		}
		return email.NewGmailProvider(service, cfg.From, cfg.FromName, logger), nil
	case config.MailBrevo:
		return email.NewBrevoProvider(cfg.BrevoAPIKey, cfg.From, cfg.FromName, logger), nil
	case config.MailSMTP:
		return email.NewSMTPProvider(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.From, cfg.FromName, logger), nil
	case config.MailPostmark:
		return email.NewPostmarkProvider(cfg.PostmarkServer, cfg.PostmarkAccount, cfg.From, cfg.FromName, logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

// newTemplateSource reads the welcome template from disk when a path is
// configured, so it can be edited without a redeploy.
func newTemplateSource(cfg config.MailConfig) email.TemplateSource {
	if cfg.TemplatePath != "" {
		return email.FileSource{Path: cfg.TemplatePath}
	}
	return email.EmbeddedSource{}
}
