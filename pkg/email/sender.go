// Package email delivers transactional mail over SMTP.
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/keepsakeshop/keepsake-backend/pkg/config"
	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type smtpSender struct {
	cfg  config.SMTPConfig
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender builds a sender backed by the configured SMTP relay.
func NewSMTPSender(cfg config.SMTPConfig) (Sender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("smtp port must be positive")
	}
	return &smtpSender{cfg: cfg, send: smtp.SendMail}, nil
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("recipient is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	payload := buildPayload(s.cfg.DefaultFrom, msg)
	if err := s.send(addr, auth, s.cfg.DefaultFrom, []string{msg.To}, payload); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func buildPayload(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

type logSender struct {
	logg *logger.Logger
}

// NewLogSender builds a sender that only logs, for local development without
// an SMTP relay.
func NewLogSender(logg *logger.Logger) Sender {
	return &logSender{logg: logg}
}

func (s *logSender) Send(ctx context.Context, msg Message) error {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	s.logg.Info(ctx, "email suppressed (no smtp relay configured)")
	return nil
}
