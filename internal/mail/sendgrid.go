package mail

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
	"time"

	"makerboards/internal/middleware"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendGridClient interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

// SendGridSender delivers through the SendGrid v3 API.
type SendGridSender struct {
	from   string
	client sendGridClient
}

func NewSendGridSender(apiKey, from string) (*SendGridSender, error) {
	if apiKey == "" || from == "" {
		return nil, errors.New("invalid SendGrid configuration")
	}
	return &SendGridSender{from: from, client: sendgrid.NewSendClient(apiKey)}, nil
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	msg, err := prepare(msg, s.from)
	if err != nil {
		return err
	}

	sender, err := netmail.ParseAddress(msg.From)
	if err != nil {
		return fmt.Errorf("invalid sender %q: %w", msg.From, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, rcpt := range msg.To {
		email := sgmail.NewSingleEmail(
			sgmail.NewEmail(sender.Name, sender.Address),
			msg.Subject,
			sgmail.NewEmail("", rcpt),
			msg.Body,
			"",
		)

		response, err := s.client.SendWithContext(ctx, email)
		if err != nil {
			middleware.Logger.ErrorContext(ctx, "failed to send email", "provider", "sendgrid", "error", err)
			return err
		}
		if response.StatusCode >= 300 {
			err := fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
			middleware.Logger.ErrorContext(ctx, "failed to send email", "provider", "sendgrid", "error", err)
			return err
		}
	}
	return nil
}
