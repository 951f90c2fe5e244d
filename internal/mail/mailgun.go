package mail

import (
	"context"
	"errors"
	"time"

	"makerboards/internal/middleware"

	"github.com/mailgun/mailgun-go/v4"
)

type mailgunClient interface {
	NewMessage(from, subject, text string, to ...string) *mailgun.Message
	Send(ctx context.Context, m *mailgun.Message) (string, string, error)
}

// MailgunSender delivers through the Mailgun messages API.
type MailgunSender struct {
	from   string
	client mailgunClient
}

func NewMailgunSender(domain, apiKey, from string) (*MailgunSender, error) {
	if domain == "" || apiKey == "" || from == "" {
		return nil, errors.New("invalid Mailgun configuration")
	}
	return &MailgunSender{from: from, client: mailgun.NewMailgun(domain, apiKey)}, nil
}

func (s *MailgunSender) Send(ctx context.Context, msg Message) error {
	msg, err := prepare(msg, s.from)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	m := s.client.NewMessage(msg.From, msg.Subject, msg.Body, msg.To...)
	_, id, err := s.client.Send(ctx, m)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to send email", "provider", "mailgun", "error", err)
		return err
	}

	middleware.Logger.DebugContext(ctx, "email queued", "provider", "mailgun", "id", id)
	return nil
}
