package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unislay-landing/config"
	"unislay-landing/email"
)

func TestNewProvider(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	tests := []struct {
		cfg  config.MailConfig
		want any
	}{
		{cfg: config.MailConfig{Provider: config.MailMock}, want: &email.MockProvider{}},
		{cfg: config.MailConfig{Provider: config.MailBrevo, BrevoAPIKey: "k", From: "hi@unislay.com"}, want: &email.BrevoProvider{}},
		{cfg: config.MailConfig{Provider: config.MailSMTP, SMTPHost: "localhost", SMTPPort: 587, From: "hi@unislay.com"}, want: &email.SMTPProvider{}},
		{cfg: config.MailConfig{Provider: config.MailPostmark, PostmarkServer: "s", PostmarkAccount: "a", From: "hi@unislay.com"}, want: &email.PostmarkProvider{}},
	}
	for _, tt := range tests {
		t.Run(tt.cfg.Provider, func(t *testing.T) {
			p, err := newProvider(ctx, tt.cfg, logger)
			require.NoError(t, err)
			assert.IsType(t, tt.want, p)
		})
	}
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := newProvider(context.Background(), config.MailConfig{Provider: "pigeon"}, slog.Default())
	assert.ErrorContains(t, err, "pigeon")
}

func TestNewTemplateSource(t *testing.T) {
	assert.Equal(t, email.EmbeddedSource{}, newTemplateSource(config.MailConfig{}))
	assert.Equal(t, email.FileSource{Path: "/etc/welcome.html"}, newTemplateSource(config.MailConfig{TemplatePath: "/etc/welcome.html"}))
}
