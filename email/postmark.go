package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mrz1836/postmark"
)

// PostmarkProvider sends emails via the Postmark transactional API.
type PostmarkProvider struct {
	client   *postmark.Client
	logger   *slog.Logger
	fromAddr string
	fromName string
}

// NewPostmarkProvider creates a new Postmark email provider.
func NewPostmarkProvider(serverToken, accountToken, fromAddr, fromName string, logger *slog.Logger) *PostmarkProvider {
	return &PostmarkProvider{
		client:   postmark.NewClient(serverToken, accountToken),
		logger:   logger,
		fromAddr: fromAddr,
		fromName: fromName,
	}
}

// Send sends an email via Postmark.
func (p *PostmarkProvider) Send(ctx context.Context, to, subject, htmlBody string) error {
	from := p.fromAddr
	if p.fromName != "" {
		from = fmt.Sprintf("%s <%s>", p.fromName, p.fromAddr)
	}

	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:       from,
		To:         to,
		Subject:    subject,
		Tag:        "welcome",
		HTMLBody:   htmlBody,
		TextBody:   PlainText(htmlBody),
		TrackOpens: false,
	})
	if err != nil {
		p.logger.WarnContext(ctx, "Postmark send failed", "to", to, "error", err)
		return fmt.Errorf("postmark send: %w", err)
	}
	if resp.ErrorCode > 0 {
		p.logger.WarnContext(ctx, "Postmark rejected message",
			"to", to,
			"error_code", resp.ErrorCode,
			"message", resp.Message)
		return fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message)
	}

	p.logger.InfoContext(ctx, "Postmark send completed", "to", to, "message_id", resp.MessageID)
	return nil
}
