package mail

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"makerboards/internal/middleware"
)

// ConsoleSender writes messages to the structured log instead of delivering them.
type ConsoleSender struct {
	from string
}

func NewConsoleSender(from string) *ConsoleSender {
	return &ConsoleSender{from: from}
}

func (s *ConsoleSender) Send(ctx context.Context, msg Message) error {
	msg, err := prepare(msg, s.from)
	if err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "email",
		slog.String("from", msg.From),
		slog.String("to", strings.Join(msg.To, ", ")),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body),
	)
	return nil
}

// Outbox keeps sent messages in memory. It backs the "memory" provider and tests.
type Outbox struct {
	from string

	mu       sync.Mutex
	messages []Message
}

func NewOutbox(from string) *Outbox {
	return &Outbox{from: from}
}

func (o *Outbox) Send(_ context.Context, msg Message) error {
	msg, err := prepare(msg, o.from)
	if err != nil {
		return err
	}
	msg.To = append([]string(nil), msg.To...)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, msg)
	return nil
}

// Messages returns a copy of everything sent so far.
func (o *Outbox) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.messages...)
}

// Reset empties the outbox.
func (o *Outbox) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = nil
}
