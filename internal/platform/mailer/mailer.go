// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

/*
Package mailer delivers transactional email (password reset codes).

Two implementations share the [Mailer] contract:

  - SMTPMailer: real delivery through an SMTP relay with STARTTLS.
  - LogMailer: development fallback that writes the message to the log.
*/
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// Mailer sends transactional messages.
type Mailer interface {
	SendResetCode(context context.Context, message ResetCodeMessage) error
}

// ResetCodeMessage is the data rendered into a password reset email.
type ResetCodeMessage struct {
	To        string
	FullName  string
	Code      string
	ExpiresIn time.Duration
}

const resetSubject = "Password Reset Code - AWS Student Hub"

var resetTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="text-align: center;">Password Reset Request</h2>
    <p>Hello {{.FullName}},</p>
    <p>You requested to reset your password for your AWS Student Hub account. Use the code below to complete your password reset:</p>
    <div style="background: #f8f9fa; padding: 20px; border-radius: 8px; text-align: center; margin: 20px 0;">
      <div style="font-size: 32px; font-weight: bold; color: #FF9900; letter-spacing: 5px;">{{.Code}}</div>
    </div>
    <p>This code will expire in {{.Minutes}} minutes.</p>
    <p>If you didn't request this password reset, please ignore this email.</p>
    <p style="margin-top: 30px; font-size: 14px; color: #666;">Best regards,<br>AWS Student Hub Team</p>
  </div>
</body>
</html>`))

// RenderResetCode renders the HTML body of a reset email.
func RenderResetCode(message ResetCodeMessage) (string, error) {
	var body bytes.Buffer
	err := resetTemplate.Execute(&body, struct {
		FullName string
		Code     string
		Minutes  int
	}{
		FullName: message.FullName,
		Code:     message.Code,
		Minutes:  int(message.ExpiresIn.Minutes()),
	})
	if err != nil {
		return "", fmt.Errorf("mailer_render_failed: %w", err)
	}
	return body.String(), nil
}

// # SMTP Delivery

// SMTPConfig holds the relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	config SMTPConfig
	from   *mail.Address
}

// NewSMTPMailer validates the sender address and returns an [SMTPMailer].
func NewSMTPMailer(config SMTPConfig) (*SMTPMailer, error) {
	from, err := mail.ParseAddress(config.From)
	if err != nil {
		return nil, fmt.Errorf("mailer: invalid sender %q: %w", config.From, err)
	}
	return &SMTPMailer{config: config, from: from}, nil
}

// SendResetCode renders and sends the reset code email.
func (mailer *SMTPMailer) SendResetCode(context context.Context, message ResetCodeMessage) error {
	body, err := RenderResetCode(message)
	if err != nil {
		return err
	}

	payload := buildMessage(mailer.from.String(), message.To, resetSubject, body)
	address := net.JoinHostPort(mailer.config.Host, strconv.Itoa(mailer.config.Port))

	var auth smtp.Auth
	if mailer.config.Username != "" {
		auth = smtp.PlainAuth("", mailer.config.Username, mailer.config.Password, mailer.config.Host)
	}

	// net/smtp has no context support; run it aside so cancellation is honored.
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(address, auth, mailer.from.Address, []string{message.To}, payload)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mailer_send_failed: %w", err)
		}
		return nil
	case <-context.Done():
		return fmt.Errorf("mailer_send_failed: %w", context.Err())
	}
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var builder strings.Builder
	builder.WriteString("From: " + from + "\r\n")
	builder.WriteString("To: " + to + "\r\n")
	builder.WriteString("Subject: " + subject + "\r\n")
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	builder.WriteString("\r\n")
	builder.WriteString(htmlBody)
	return []byte(builder.String())
}

// # Development Fallback

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a [LogMailer].
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendResetCode logs the code. Never use in production.
func (mailer *LogMailer) SendResetCode(context context.Context, message ResetCodeMessage) error {
	mailer.logger.InfoContext(context, "mail_reset_code_logged",
		slog.String("to", message.To),
		slog.String("code", message.Code),
	)
	return nil
}
