package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	mail "github.com/go-mail/mail"
)

// SMTPProvider sends emails through an SMTP relay as multipart text+HTML.
type SMTPProvider struct {
	logger   *slog.Logger
	host     string
	user     string
	pass     string
	fromAddr string
	fromName string
	port     int
}

// NewSMTPProvider creates a new SMTP email provider.
func NewSMTPProvider(host string, port int, user, pass, fromAddr, fromName string, logger *slog.Logger) *SMTPProvider {
	return &SMTPProvider{
		host:     host,
		port:     port,
		user:     user,
		pass:     pass,
		fromAddr: fromAddr,
		fromName: fromName,
		logger:   logger,
	}
}

// Send dials the relay and delivers one message. The dial is not context aware,
// so ctx is only checked before dialing.
func (s *SMTPProvider) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := s.message(to, subject, htmlBody)

	d := mail.NewDialer(s.host, s.port, s.user, s.pass)
	d.TLSConfig = &tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}
	if s.port == 465 {
		d.SSL = true
	}

	startTime := time.Now()
	if err := d.DialAndSend(m); err != nil {
		s.logger.WarnContext(ctx, "SMTP send failed",
			"host", s.host,
			"to", to,
			"duration_ms", time.Since(startTime).Milliseconds(),
			"error", err)
		return fmt.Errorf("smtp send: %w", err)
	}

	s.logger.InfoContext(ctx, "SMTP send completed",
		"host", s.host,
		"to", to,
		"duration_ms", time.Since(startTime).Milliseconds())
	return nil
}

func (s *SMTPProvider) message(to, subject, htmlBody string) *mail.Message {
	m := mail.NewMessage()
	if s.fromName != "" {
		m.SetAddressHeader("From", s.fromAddr, s.fromName)
	} else {
		m.SetHeader("From", s.fromAddr)
	}
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	// Prefer multipart/alternative so text-only clients still get a readable body.
	if text := PlainText(htmlBody); text != "" {
		m.SetBody("text/plain", text)
		m.AddAlternative("text/html", htmlBody)
	} else {
		m.SetBody("text/html", htmlBody)
	}
	return m
}
