// Package mailer sends transactional email over SMTP.
package mailer

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"gopkg.in/gomail.v2"
)

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, name, link string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   from,
	}
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, name, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Reset your password")
	msg.SetBody("text/plain", resetText(name, link))
	msg.AddAlternative("text/html", resetHTML(name, link))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

func resetText(name, link string) string {
	return fmt.Sprintf("Hello %s,\n\nUse the link below to choose a new password. It expires in one hour.\n\n%s\n\nIf you did not ask for this, ignore this email.\n", greetingName(name), link)
}

func resetHTML(name, link string) string {
	return fmt.Sprintf(`<p>Hello %s,</p>
<p>Use the link below to choose a new password. It expires in one hour.</p>
<p><a href="%s">Reset password</a></p>
<p>If you did not ask for this, ignore this email.</p>`, html.EscapeString(greetingName(name)), html.EscapeString(link))
}

func greetingName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}

// LogMailer logs instead of sending. Used when SMTP is not configured.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(_ context.Context, to, _, _ string) error {
	slog.Warn("smtp not configured, password reset email not sent", "to", to)
	return nil
}
