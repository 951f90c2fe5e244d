// Package mail delivers transactional email through a configurable provider.
package mail

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
	"strings"

	"makerboards/internal/config"
)

// Message is a plain-text email.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var ErrNoRecipients = errors.New("mail: message has no recipients")

// NewSender returns the sender selected by MAIL_PROVIDER.
func NewSender(cfg *config.Config) (Sender, error) {
	from := cfg.MailFrom
	if _, err := netmail.ParseAddress(from); err != nil {
		return nil, fmt.Errorf("invalid MAIL_FROM %q: %w", from, err)
	}

	switch strings.ToLower(cfg.MailProvider) {
	case "", "console":
		return NewConsoleSender(from), nil
	case "memory":
		return NewOutbox(from), nil
	case "smtp":
		return NewSMTPSender(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     from,
		})
	case "sendgrid":
		return NewSendGridSender(cfg.SendGridAPIKey, from)
	case "mailgun":
		return NewMailgunSender(cfg.MailgunDomain, cfg.MailgunAPIKey, from)
	default:
		return nil, fmt.Errorf("unsupported MAIL_PROVIDER %q", cfg.MailProvider)
	}
}

// prepare fills the default sender and checks recipients.
func prepare(msg Message, defaultFrom string) (Message, error) {
	if msg.From == "" {
		msg.From = defaultFrom
	}
	if len(msg.To) == 0 {
		return msg, ErrNoRecipients
	}
	return msg, nil
}
