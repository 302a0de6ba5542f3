package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type EmailService struct {
	sender    Sender
	fromEmail string
	appURL    string
	appName   string
}

func NewEmailService(sender Sender, fromEmail, appURL, appName string) *EmailService {
	return &EmailService{
		sender:    sender,
		fromEmail: fromEmail,
		appURL:    appURL,
		appName:   appName,
	}
}

func (s *EmailService) SendVerificationEmail(ctx context.Context, email, name, verifyURL string, expiry time.Duration) error {
	subject, text, html, err := verificationEmailTemplate(name, verifyURL, s.appName, expiry)
	if err != nil {
		return err
	}

	err = s.sender.Send(ctx, EmailMessage{
		From:    s.fromEmail,
		To:      email,
		Subject: subject,
		Text:    text,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	slog.Info("email sent", "type", "email_verify", "to", email)
	return nil
}

func (s *EmailService) SendWelcomeEmail(ctx context.Context, email, name string) error {
	subject, body := welcomeEmailTemplate(name, s.appURL, s.appName)

	err := s.sender.Send(ctx, EmailMessage{
		From:    s.fromEmail,
		To:      email,
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	slog.Info("email sent", "type", "welcome", "to", email)
	return nil
}
