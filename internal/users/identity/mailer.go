// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// # Log Mailer

var _ Mailer = (*LogMailer)(nil)

// LogMailer writes login links to the log instead of sending them.
// It is used whenever no SMTP relay is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a new [LogMailer].
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendLoginLink implements [Mailer].
func (mailer *LogMailer) SendLoginLink(context context.Context, email, link string, expiresAt time.Time) error {
	mailer.logger.InfoContext(context, "login_link_ready",
		slog.String("email", email),
		slog.String("link", link),
		slog.Time("expires_at", expiresAt),
	)
	return nil
}

// # SMTP Mailer

// SMTPConfig addresses the outgoing mail relay.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

var _ Mailer = (*SMTPMailer)(nil)

// SMTPMailer delivers login links through an SMTP relay.
type SMTPMailer struct {
	config SMTPConfig
}

// NewSMTPMailer creates a new [SMTPMailer].
func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &SMTPMailer{config: config}
}

// SendLoginLink implements [Mailer].
func (mailer *SMTPMailer) SendLoginLink(context context.Context, email, link string, expiresAt time.Time) error {
	body := fmt.Sprintf(
		"Open this link to sign in to Anirate:\r\n\r\n%s\r\n\r\nIt expires at %s and works once.\r\n",
		link, expiresAt.UTC().Format(time.RFC1123),
	)
	return mailer.send(context, email, "Your Anirate sign-in link", body)
}

func (mailer *SMTPMailer) send(context context.Context, to, subject, body string) error {
	config := mailer.config
	address := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))

	dialer := &net.Dialer{Timeout: config.Timeout}
	conn, err := dialer.DialContext(context, "tcp", address)
	if err != nil {
		return fmt.Errorf("smtp_dial_failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// The dialer timeout only covers the connect; bound the whole exchange too.
	_ = conn.SetDeadline(time.Now().Add(config.Timeout))

	client, err := smtp.NewClient(conn, config.Host)
	if err != nil {
		return fmt.Errorf("smtp_client_failed: %w", err)
	}
	defer func() { _ = client.Close() }()

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{
			ServerName: config.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("smtp_starttls_failed: %w", err)
		}
	}

	if config.User != "" && config.Password != "" {
		auth := smtp.PlainAuth("", config.User, config.Password, config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp_auth_failed: %w", err)
		}
	}

	if err := client.Mail(config.From); err != nil {
		return fmt.Errorf("smtp_sender_failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp_recipient_failed: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp_data_failed: %w", err)
	}
	if _, err := writer.Write([]byte(buildMessage(config.From, to, subject, body))); err != nil {
		return fmt.Errorf("smtp_write_failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("smtp_close_failed: %w", err)
	}

	// The message is accepted once DATA closes.
	_ = client.Quit()

	return nil
}

func buildMessage(from, to, subject, body string) string {
	var message strings.Builder

	message.WriteString(fmt.Sprintf("From: Anirate <%s>\r\n", from))
	message.WriteString(fmt.Sprintf("To: %s\r\n", to))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	message.WriteString("\r\n")
	message.WriteString(body)

	return message.String()
}
