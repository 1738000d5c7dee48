package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/keepsakeshop/keepsake-backend/internal/checkout"
	"github.com/keepsakeshop/keepsake-backend/internal/orders"
	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
	"github.com/keepsakeshop/keepsake-backend/pkg/outbox"
	"github.com/keepsakeshop/keepsake-backend/pkg/outbox/idempotency"
)

const orderEmailConsumer = "order-email-worker"

// OrderConsumer watches the orders topic and sends confirmation and status
// emails.
type OrderConsumer struct {
	service      *Service
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewOrderConsumer builds the order email consumer.
func NewOrderConsumer(service *Service, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*OrderConsumer, error) {
	if service == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("orders subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &OrderConsumer{
		service:      service,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *OrderConsumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (c *OrderConsumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	switch enums.OutboxEventType(eventType) {
	case enums.EventOrderCreated, enums.EventOrderStatusChanged:
	default:
		c.logg.Info(logCtx, "skipping non-order event")
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

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, orderEmailConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, enums.OutboxEventType(eventType), envelope.Data); err != nil {
		c.logg.Error(logCtx, "order email failed", err)
		_ = c.idempotency.Delete(ctx, orderEmailConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *OrderConsumer) handle(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage) error {
	switch eventType {
	case enums.EventOrderCreated:
		var payload checkout.OrderCreatedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse order created payload: %w", err)
		}
		return c.service.SendOrderConfirmation(ctx, payload.UserID, payload.OrderID, payload.TotalPriceCents)
	case enums.EventOrderStatusChanged:
		var payload orders.OrderStatusChangedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse order status payload: %w", err)
		}
		return c.service.SendOrderStatus(ctx, payload.UserID, payload.OrderID, payload.Status)
	default:
		return nil
	}
}
