// Package mailer delivers mail over SMTP.
package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/walletguard/walletd/pkg/config"
)

// SMTP implements verification.Mailer over an SMTP server.
type SMTP struct {
	client *mail.Client
	from   string
}

// New creates an SMTP mailer from configuration. Credentials are optional
// for unauthenticated relays.
func New(cfg *config.Mail) (*SMTP, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mailer: %w", err)
	}
	return &SMTP{client: client, from: cfg.From}, nil
}

// Send composes and delivers one plain-text message.
func (s *SMTP) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("mailer: from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mailer: to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	return nil
}
