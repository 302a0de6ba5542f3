package service

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var verificationEmailHTML = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Verify your email</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f4f4f5;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 600px; margin: 0 auto; padding: 40px 20px;">
    <tr>
      <td style="background-color: #ffffff; border-radius: 12px; padding: 40px;">
        <h1 style="margin: 0 0 8px 0; font-size: 24px; color: #18181b;">{{.AppName}}</h1>
        <p style="margin: 0 0 24px 0; font-size: 16px; color: #71717a;">Hi {{.Name}}, verify your email address to get started.</p>
        <p style="margin: 0 0 24px 0; font-size: 15px; color: #3f3f46;">Click the button below to verify your email and activate your account. This link will expire in {{.Expiry}}.</p>
        <a href="{{.URL}}" style="display: inline-block; padding: 12px 24px; background-color: #3b82f6; color: #ffffff; text-decoration: none; font-weight: 600; border-radius: 8px;">Verify Email</a>
        <p style="margin: 24px 0 0 0; font-size: 14px; color: #71717a;">If the button doesn't work, copy and paste this link into your browser:</p>
        <p style="margin: 8px 0 0 0; font-size: 13px; word-break: break-all;"><a href="{{.URL}}" style="color: #3b82f6;">{{.URL}}</a></p>
      </td>
    </tr>
  </table>
</body>
</html>`))

func verificationEmailTemplate(name, verifyURL, appName string, expiry time.Duration) (string, string, string, error) {
	subject := fmt.Sprintf("Verify your email - %s", appName)
	text := fmt.Sprintf(`Hi %s,

Verify your email address to activate your %s account:
%s

This link expires in %s and can only be used once.

If you didn't sign up, you can safely ignore this email.

Best,
The %s Team`, name, appName, verifyURL, humanDuration(expiry), appName)

	var html bytes.Buffer
	err := verificationEmailHTML.Execute(&html, struct {
		AppName string
		Name    string
		URL     string
		Expiry  string
	}{appName, name, verifyURL, humanDuration(expiry)})
	if err != nil {
		return "", "", "", fmt.Errorf("failed to render verification email: %w", err)
	}

	return subject, text, html.String(), nil
}

func welcomeEmailTemplate(name, appURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`Hi %s,

Your email is verified and your account is active!

Start chatting: %s

Best,
The %s Team`, name, appURL, appName)

	return subject, body
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d >= time.Minute && d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
