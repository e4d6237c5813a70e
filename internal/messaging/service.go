// Package messaging provides the outbound notification abstraction for
// HealthDesk: appointment confirmations and reminders are delivered through a
// pluggable Service so the portal works with or without an SMS provider.
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/healthdesk/healthdesk/internal/twiliosms"
)

// phoneNumberRegex strips everything that is not a digit or leading plus.
var phoneNumberRegex = regexp.MustCompile(`[^\d+]`)

// Service defines a pluggable notification delivery abstraction.
type Service interface {
	// ValidateAndCanonicalizeRecipient validates and canonicalizes a recipient
	// phone number. Returns the canonicalized recipient and an error if
	// validation fails.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)

	// SendMessage sends a notification to a recipient.
	SendMessage(ctx context.Context, to string, body string) error
}

// canonicalize removes formatting characters and validates the digit count.
func canonicalize(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}
	canonical := phoneNumberRegex.ReplaceAllString(recipient, "")
	digits := 0
	for _, r := range canonical {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 6 {
		return "", fmt.Errorf("invalid phone number: %q is too short (minimum 6 digits required)", canonical)
	}
	return canonical, nil
}

// NoopService drops notifications. Used when no SMS provider is configured.
type NoopService struct{}

// NewNoopService creates a notification sink.
func NewNoopService() *NoopService {
	return &NoopService{}
}

// ValidateAndCanonicalizeRecipient validates the recipient format.
func (s *NoopService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalize(recipient)
}

// SendMessage logs and drops the notification.
func (s *NoopService) SendMessage(ctx context.Context, to string, body string) error {
	slog.Debug("NoopService dropping notification", "to", to, "bytes", len(body))
	return nil
}

// TwilioService delivers notifications as SMS through Twilio.
type TwilioService struct {
	client twiliosms.SMSSender
}

// NewTwilioService creates a notification service over a Twilio client.
func NewTwilioService(client twiliosms.SMSSender) *TwilioService {
	return &TwilioService{client: client}
}

// ValidateAndCanonicalizeRecipient validates the recipient format.
func (s *TwilioService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalize(recipient)
}

// SendMessage delivers the notification via SMS.
func (s *TwilioService) SendMessage(ctx context.Context, to string, body string) error {
	canonical, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		return err
	}
	if err := s.client.SendSMS(ctx, canonical, body); err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	return nil
}
