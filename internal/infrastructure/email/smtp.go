// Package email sends lifecycle and security notifications over SMTP.
package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/servana-inc/servana/internal/shared/config"
)

// SMTPNotifier implements the auth layer's notifier contract with gomail.
// All sends are synchronous; callers decide whether failures matter.
type SMTPNotifier struct {
	config config.EmailConfig
	dialer *gomail.Dialer
}

func NewSMTPNotifier(cfg config.EmailConfig) *SMTPNotifier {
	return &SMTPNotifier{
		config: cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
	}
}

func (s *SMTPNotifier) SendWelcome(ctx context.Context, email, name string) error {
	subject := "Welcome to Servana"
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Welcome to Servana, %s!</h2>
			<p>Your account is ready. You signed in with your Google account, so there is no password to remember.</p>
			<p>You can add a password at any time from your account settings if you also want to sign in directly.</p>
		</body>
		</html>
	`, name)

	plainBody := fmt.Sprintf(`
Welcome to Servana, %s!

Your account is ready. You signed in with your Google account, so there is no password to remember.

You can add a password at any time from your account settings if you also want to sign in directly.
	`, name)

	return s.send(email, subject, htmlBody, plainBody)
}

func (s *SMTPNotifier) SendIdentityLinked(ctx context.Context, email, provider string) error {
	subject := "A sign-in method was added to your account"
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>New sign-in method</h2>
			<p>Your %s account was just linked to your Servana account and can now be used to sign in.</p>
			<p>If you didn't do this, please secure your account and contact support immediately.</p>
		</body>
		</html>
	`, provider)

	plainBody := fmt.Sprintf(`
New sign-in method

Your %s account was just linked to your Servana account and can now be used to sign in.

If you didn't do this, please secure your account and contact support immediately.
	`, provider)

	return s.send(email, subject, htmlBody, plainBody)
}

func (s *SMTPNotifier) SendIdentityUnlinked(ctx context.Context, email, provider string) error {
	subject := "A sign-in method was removed from your account"
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Sign-in method removed</h2>
			<p>Your %s account was just unlinked from your Servana account. From now on, sign in with your email and password.</p>
			<p>If you didn't do this, please secure your account and contact support immediately.</p>
		</body>
		</html>
	`, provider)

	plainBody := fmt.Sprintf(`
Sign-in method removed

Your %s account was just unlinked from your Servana account. From now on, sign in with your email and password.

If you didn't do this, please secure your account and contact support immediately.
	`, provider)

	return s.send(email, subject, htmlBody, plainBody)
}

func (s *SMTPNotifier) send(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.FromAddress)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
