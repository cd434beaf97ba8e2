// Package email renders the welcome email and sends it through pluggable providers.
package email

import (
	"context"
	"strings"
)

// Provider defines the interface for email sending implementations.
type Provider interface {
	// Send sends an HTML email. Implementations make a single attempt.
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// sanitizeEmailHeader removes newlines and control characters to prevent header injection.
func sanitizeEmailHeader(s string) string {
	var result strings.Builder
	for _, r := range s {
		if r >= 32 && r != 127 {
			result.WriteRune(r)
		}
	}
	return result.String()
}
