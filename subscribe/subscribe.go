// Package subscribe implements the subscription intake workflow:
// validate, persist, render the welcome email, notify.
package subscribe

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/mail"
	"regexp"
	"time"

	"unislay-landing/email"
	"unislay-landing/pkg/landing"
)

// DefaultSubject is the welcome email subject when none is configured.
const DefaultSubject = "Welcome to Unislay!"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ErrInvalidEmail is reported for missing or malformed addresses.
var ErrInvalidEmail = errors.New("invalid email address")

// Store persists subscribers with atomic email uniqueness.
type Store interface {
	Create(ctx context.Context, email string) (*landing.Subscriber, error)
}

// Outcome is the resolved result of one subscribe call.
type Outcome struct {
	Subscriber *landing.Subscriber // Set for Created and NotificationFailed
	Err        error               // Cause for every non-Created result
	Result     landing.Result
}

// Config wires the service collaborators.
type Config struct {
	Store     Store
	Templates email.TemplateSource
	Notifier  email.Provider
	Logger    *slog.Logger
	Subject   string
}

// Service runs the subscription state machine.
type Service struct {
	store     Store
	templates email.TemplateSource
	notifier  email.Provider
	logger    *slog.Logger
	subject   string
}

// New creates a Service. A nil template source falls back to the embedded template.
func New(cfg *Config) *Service {
	s := &Service{
		store:     cfg.Store,
		templates: cfg.Templates,
		notifier:  cfg.Notifier,
		logger:    cfg.Logger,
		subject:   cfg.Subject,
	}
	if s.templates == nil {
		s.templates = email.EmbeddedSource{}
	}
	if s.subject == "" {
		s.subject = DefaultSubject
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// IsValidEmail reports whether address is a plausible single mailbox.
func IsValidEmail(address string) bool {
	if len(address) < 3 || len(address) > 254 {
		return false
	}
	_, err := mail.ParseAddress(address)
	return err == nil && emailRegex.MatchString(address)
}

// Subscribe registers rawEmail and sends the welcome email. An empty string
// stands for a missing address. Persistence always happens before the send
// and is never rolled back when the send fails.
func (s *Service) Subscribe(ctx context.Context, rawEmail string) Outcome {
	if !IsValidEmail(rawEmail) {
		s.logger.InfoContext(ctx, "Subscription rejected", "reason", "invalid email", "email_length", len(rawEmail))
		return Outcome{Result: landing.ValidationFailed, Err: ErrInvalidEmail}
	}

	sub, err := s.store.Create(ctx, rawEmail)
	if err != nil {
		if landing.IsDuplicate(err) {
			s.logger.InfoContext(ctx, "Already subscribed", "email", rawEmail)
			return Outcome{Result: landing.AlreadySubscribed, Err: err}
		}
		s.logger.ErrorContext(ctx, "Failed to save subscriber", "email", rawEmail, "error", err)
		return Outcome{Result: landing.StoreUnavailable, Err: err}
	}
	s.logger.InfoContext(ctx, "Subscriber created", "email", sub.Email, "id", sub.ID)

	if err := s.notify(ctx, sub); err != nil {
		s.logger.WarnContext(ctx, "Failed to send welcome email", "email", sub.Email, "error", err)
		return Outcome{Result: landing.NotificationFailed, Subscriber: sub, Err: err}
	}

	return Outcome{Result: landing.Created, Subscriber: sub}
}

func (s *Service) notify(ctx context.Context, sub *landing.Subscriber) error {
	tmpl, err := s.templates.Load(ctx)
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}

	body := email.Render(tmpl, html.EscapeString(email.DisplayName(sub.Email)))

	start := time.Now()
	if err := s.notifier.Send(ctx, sub.Email, s.subject, body); err != nil {
		return fmt.Errorf("send welcome: %w", err)
	}
	s.logger.InfoContext(ctx, "Welcome email sent", "email", sub.Email, "duration_ms", time.Since(start).Milliseconds())
	return nil
}
