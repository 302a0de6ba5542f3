package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendVerificationEmail(t *testing.T) {
	sender := NewMemorySender()
	svc := NewEmailService(sender, "noreply@example.com", "https://chat.example.com", "Chatty")

	link := "https://chat.example.com/verify-email?token=abc&x=<y>"
	err := svc.SendVerificationEmail(context.Background(), "bob@example.com", "Bob", link, time.Hour)
	require.NoError(t, err)

	sent := sender.Sent()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, "noreply@example.com", msg.From)
	assert.Equal(t, "Verify your email - Chatty", msg.Subject)
	assert.Contains(t, msg.Text, link)
	assert.Contains(t, msg.Text, "1 hour")
	assert.Contains(t, msg.HTML, "Hi Bob")
	assert.NotContains(t, msg.HTML, "<y>", "link is escaped in HTML")
}

func TestResendSender_NotConfigured(t *testing.T) {
	err := NewResendSender("").Send(context.Background(), EmailMessage{To: "bob@example.com"})
	assert.ErrorIs(t, err, ErrEmailNotConfigured)
}

func TestNewSender(t *testing.T) {
	assert.IsType(t, &LogSender{}, NewSender("", true))
	assert.IsType(t, &ResendSender{}, NewSender("re_123", false))
}
