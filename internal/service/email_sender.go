package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/resend/resend-go/v2"
)

var ErrEmailNotConfigured = errors.New("email service not configured (missing RESEND_API_KEY)")

type EmailMessage struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// NewSender picks the delivery backend: log-only in development, Resend otherwise.
func NewSender(apiKey string, isDev bool) Sender {
	if isDev {
		return NewLogSender(slog.Default())
	}
	return NewResendSender(apiKey)
}

type ResendSender struct {
	client *resend.Client
}

func NewResendSender(apiKey string) *ResendSender {
	var client *resend.Client
	if apiKey != "" {
		client = resend.NewClient(apiKey)
	}
	return &ResendSender{client: client}
}

func (s *ResendSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.client == nil {
		return ErrEmailNotConfigured
	}

	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
		Html:    msg.HTML,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	return err
}

// LogSender logs emails instead of sending them. Development only: it writes
// recipients and links to the log.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg EmailMessage) error {
	s.logger.Info("email sent (dev mode)",
		"from", msg.From,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}

// MemorySender records emails in memory. Err, when set, is returned from every Send.
type MemorySender struct {
	mu     sync.Mutex
	Emails []EmailMessage
	Err    error
}

func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

func (s *MemorySender) Send(_ context.Context, msg EmailMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}
	s.Emails = append(s.Emails, msg)
	return nil
}

func (s *MemorySender) Sent() []EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]EmailMessage(nil), s.Emails...)
}
