package email

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/keepsakeshop/keepsake-backend/pkg/config"
)

func TestSMTPSenderBuildsPayload(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotPayload []byte

	sender := &smtpSender{
		cfg: config.SMTPConfig{
			Host:        "mail.example.com",
			Port:        587,
			DefaultFrom: "no-reply@keepsake.shop",
		},
		send: func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr = addr
			gotFrom = from
			gotTo = to
			gotPayload = msg
			return nil
		},
	}

	err := sender.Send(context.Background(), Message{
		To:      "ada@example.com",
		Subject: "Your order shipped",
		Body:    "It is on the way.",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "mail.example.com:587" {
		t.Fatalf("unexpected addr %q", gotAddr)
	}
	if gotFrom != "no-reply@keepsake.shop" || len(gotTo) != 1 || gotTo[0] != "ada@example.com" {
		t.Fatalf("unexpected envelope from=%q to=%v", gotFrom, gotTo)
	}
	payload := string(gotPayload)
	for _, want := range []string{"Subject: Your order shipped", "To: ada@example.com", "It is on the way."} {
		if !strings.Contains(payload, want) {
			t.Fatalf("payload missing %q:\n%s", want, payload)
		}
	}
}

func TestSMTPSenderRequiresRecipient(t *testing.T) {
	sender := &smtpSender{
		cfg:  config.SMTPConfig{Host: "mail.example.com", Port: 587},
		send: func(string, smtp.Auth, string, []string, []byte) error { return nil },
	}
	if err := sender.Send(context.Background(), Message{Subject: "x"}); err == nil {
		t.Fatal("expected error for missing recipient")
	}
}

func TestNewSMTPSenderRequiresHost(t *testing.T) {
	if _, err := NewSMTPSender(config.SMTPConfig{Port: 587}); err == nil {
		t.Fatal("expected error for missing host")
	}
}
