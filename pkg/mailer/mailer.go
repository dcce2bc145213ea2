// Package mailer sends notification emails over SMTP. Point it at a real
// relay in production or an inbox service like Mailtrap in development.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPMailer sends emails through a configured SMTP server.
type SMTPMailer struct {
	host   string
	port   string
	user   string
	pass   string
	sender string
}

// NewSMTPMailerConfig contains options for creating a new SMTPMailer.
type NewSMTPMailerConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Sender   string
}

// NewSMTPMailer creates a new SMTPMailer.
func NewSMTPMailer(cfg NewSMTPMailerConfig) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.Port == "" {
		return nil, fmt.Errorf("SMTP host and port must be provided")
	}
	if cfg.User == "" || cfg.Password == "" {
		return nil, fmt.Errorf("SMTP username and password must be provided")
	}
	if cfg.Sender == "" {
		return nil, fmt.Errorf("sender email address cannot be empty")
	}
	return &SMTPMailer{
		host:   cfg.Host,
		port:   cfg.Port,
		user:   cfg.User,
		pass:   cfg.Password,
		sender: cfg.Sender,
	}, nil
}

// Send delivers one email. The Content-Type is inferred from basic HTML
// tags in the body.
func (m *SMTPMailer) Send(recipient, subject, body string) error {
	if recipient == "" {
		return fmt.Errorf("recipient email address cannot be empty")
	}
	if subject == "" {
		return fmt.Errorf("email subject cannot be empty")
	}

	contentType := "text/plain; charset=UTF-8"
	lower := strings.ToLower(body)
	if strings.Contains(lower, "<html>") || strings.Contains(lower, "<p>") {
		contentType = "text/html; charset=UTF-8"
	}

	message := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: %s\r\n"+
		"\r\n"+
		"%s\r\n", recipient, m.sender, subject, contentType, body))

	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	if err := smtp.SendMail(m.host+":"+m.port, auth, m.sender, []string{recipient}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// NoopMailer satisfies the mail-sending contract when SMTP is not
// configured. Every Send is discarded.
type NoopMailer struct{}

func (NoopMailer) Send(recipient, subject, body string) error { return nil }
