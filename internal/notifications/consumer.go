package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/keepsakeshop/keepsake-backend/internal/auth"
	"github.com/keepsakeshop/keepsake-backend/internal/reminders"
	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
	"github.com/keepsakeshop/keepsake-backend/pkg/outbox"
	"github.com/keepsakeshop/keepsake-backend/pkg/outbox/idempotency"
)

const notificationConsumer = "notification-worker"

// Consumer watches the notification topic and sends reminder and
// password-reset emails.
type Consumer struct {
	service      *Service
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds the notification email consumer.
func NewConsumer(service *Service, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if service == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("notification subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		service:      service,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	switch enums.OutboxEventType(eventType) {
	case enums.EventReminderDue, enums.EventPasswordResetRequested:
	default:
		c.logg.Info(logCtx, "skipping event without email handling")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, notificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, enums.OutboxEventType(eventType), envelope.Data); err != nil {
		c.logg.Error(logCtx, "email dispatch failed", err)
		_ = c.idempotency.Delete(ctx, notificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage) error {
	switch eventType {
	case enums.EventReminderDue:
		var payload reminders.ReminderDueEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse reminder payload: %w", err)
		}
		return c.service.SendReminderDue(ctx, payload.Email, "", payload.Title, payload.Date)
	case enums.EventPasswordResetRequested:
		var payload auth.PasswordResetRequestedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse reset payload: %w", err)
		}
		return c.service.SendPasswordReset(ctx, payload.Email, payload.Name, payload.Token, payload.ExpiresAt)
	default:
		return nil
	}
}
