// Package mailer provides functionality to send emails over SMTP.
//
// In development the server is usually Mailtrap (smtp.mailtrap.io:2525), which
// captures outgoing mail in a sandbox inbox. Credentials for it can be found in
// the SMTP settings of the inbox at https://mailtrap.io/.
package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a single outgoing email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Config holds the SMTP server settings.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends messages through an SMTP relay.
type SMTPMailer struct {
	cfg  Config
	send sendFunc
}

// NewSMTPMailer creates a mailer for the given server.
func NewSMTPMailer(cfg Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

// Send validates and delivers msg.
//
// It returns an error if:
//   - the recipient, sender or subject is empty;
//   - the connection or SMTP authentication fails;
//   - the server rejects the message.
//
// The Content-Type is text/html when the body contains an <html> or <p> tag,
// text/plain otherwise. Authentication is skipped when no username is set.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("recipient email address cannot be empty")
	}
	if m.cfg.From == "" {
		return fmt.Errorf("sender email address cannot be empty")
	}
	if msg.Subject == "" {
		return fmt.Errorf("email subject cannot be empty")
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.From, []string{msg.To}, m.render(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (m *SMTPMailer) render(msg Message) []byte {
	contentType := "text/plain; charset=UTF-8"
	lower := strings.ToLower(msg.Body)
	if strings.Contains(lower, "<html>") || strings.Contains(lower, "<p>") {
		contentType = "text/html; charset=UTF-8"
	}
	return []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: %s\r\n"+
		"\r\n"+
		"%s\r\n", msg.To, m.cfg.From, msg.Subject, contentType, msg.Body))
}
