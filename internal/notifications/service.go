// Package notifications consumes domain events and sends the matching
// transactional emails.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/internal/users"
	"github.com/keepsakeshop/keepsake-backend/pkg/email"
	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
)

// Service composes and sends the individual email kinds.
type Service struct {
	sender  email.Sender
	users   users.Repository
	baseURL string
}

// NewService builds a notifications service.
func NewService(sender email.Sender, userRepo users.Repository, baseURL string) (*Service, error) {
	if sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &Service{
		sender:  sender,
		users:   userRepo,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// SendReminderDue emails the reminder owner that a gift occasion is near.
func (s *Service) SendReminderDue(ctx context.Context, to, name, title string, date time.Time) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("reminder recipient missing")
	}
	if strings.TrimSpace(name) == "" {
		name = "there"
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nYour reminder %q is coming up on %s. Browse our gift picks before it sneaks up on you: %s/products\n\nThe Keepsake team",
		name, title, date.Format("Monday, 2 January 2006"), s.baseURL,
	)
	return s.sender.Send(ctx, email.Message{
		To:      to,
		Subject: fmt.Sprintf("Reminder: %s is almost here", title),
		Body:    body,
	})
}

// SendPasswordReset emails a single-use reset link.
func (s *Service) SendPasswordReset(ctx context.Context, to, name, token string, expiresAt time.Time) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("reset recipient missing")
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nSomeone asked to reset the password for this account. If that was you, follow the link below within %s:\n\n%s/reset-password?token=%s\n\nIf you did not request this, ignore this email.\n\nThe Keepsake team",
		name, time.Until(expiresAt).Round(time.Minute), s.baseURL, token,
	)
	return s.sender.Send(ctx, email.Message{
		To:      to,
		Subject: "Reset your Keepsake password",
		Body:    body,
	})
}

// SendOrderConfirmation emails the shopper after finalize creates the order.
func (s *Service) SendOrderConfirmation(ctx context.Context, userID, orderID uuid.UUID, totalPriceCents int) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order confirmation: user %s not found", userID)
		}
		return err
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nThanks for your order! We received it and will start working on it right away.\n\nOrder reference: %s\nTotal: %s\n\nTrack it at %s/orders/%s\n\nThe Keepsake team",
		user.Name, orderID, formatCents(totalPriceCents), s.baseURL, orderID,
	)
	return s.sender.Send(ctx, email.Message{
		To:      user.Email,
		Subject: "Your Keepsake order is confirmed",
		Body:    body,
	})
}

// SendOrderStatus emails the shopper when an admin moves the order along.
func (s *Service) SendOrderStatus(ctx context.Context, userID, orderID uuid.UUID, status enums.OrderStatus) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order status email: user %s not found", userID)
		}
		return err
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nYour order %s is now %s.\n\nSee the details at %s/orders/%s\n\nThe Keepsake team",
		user.Name, orderID, status, s.baseURL, orderID,
	)
	return s.sender.Send(ctx, email.Message{
		To:      user.Email,
		Subject: fmt.Sprintf("Order update: %s", status),
		Body:    body,
	})
}

func formatCents(cents int) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
