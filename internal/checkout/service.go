package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/internal/cart"
	"github.com/keepsakeshop/keepsake-backend/internal/orders"
	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
	"github.com/keepsakeshop/keepsake-backend/pkg/outbox"
	"github.com/keepsakeshop/keepsake-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(tx *gorm.DB, aggregate enums.OutboxAggregateType, aggregateID uuid.UUID, eventType enums.OutboxEventType, actor *outbox.ActorRef, data any) error
}

// Service drives the checkout state machine: create, record payment,
// finalize into an order.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Checkout, error)
	RecordPayment(ctx context.Context, checkoutID, actorUserID uuid.UUID, input PaymentInput) (*models.Checkout, error)
	Finalize(ctx context.Context, checkoutID, actorUserID uuid.UUID) (*models.Order, error)
}

// ItemInput is one snapshotted checkout line from the client.
type ItemInput struct {
	ProductID  uuid.UUID
	Name       string
	ImageURL   string
	PriceCents int
	Quantity   int
}

// CreateInput carries everything needed to open a checkout attempt.
type CreateInput struct {
	UserID          uuid.UUID
	Items           []ItemInput
	ShippingAddress types.ShippingAddress
	PaymentMethod   string
	TotalPriceCents int
	Quantity        int
}

// PaymentInput is a partial payment update; only non-nil fields apply.
type PaymentInput struct {
	PaymentStatus  *string
	PaymentDetails json.RawMessage
	IsPaid         *bool
}

// CheckoutFinalizedEvent is emitted when a checkout becomes an order.
type CheckoutFinalizedEvent struct {
	CheckoutID      uuid.UUID `json:"checkout_id"`
	OrderID         uuid.UUID `json:"order_id"`
	UserID          uuid.UUID `json:"user_id"`
	TotalPriceCents int       `json:"total_price_cents"`
}

// OrderCreatedEvent surfaces the new order to downstream consumers.
type OrderCreatedEvent struct {
	OrderID         uuid.UUID `json:"order_id"`
	UserID          uuid.UUID `json:"user_id"`
	TotalPriceCents int       `json:"total_price_cents"`
	ItemCount       int       `json:"item_count"`
}

type service struct {
	repo   Repository
	orders orders.Repository
	carts  cart.Repository
	tx     txRunner
	outbox outboxEmitter
}

// NewService builds a checkout service with the required dependencies.
func NewService(repo Repository, orderRepo orders.Repository, cartRepo cart.Repository, tx txRunner, emitter outboxEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		repo:   repo,
		orders: orderRepo,
		carts:  cartRepo,
		tx:     tx,
		outbox: emitter,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Checkout, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	var out *models.Checkout
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		checkout := &models.Checkout{
			UserID:          input.UserID,
			ShippingAddress: input.ShippingAddress,
			PaymentMethod:   input.PaymentMethod,
			TotalPriceCents: input.TotalPriceCents,
			Quantity:        input.Quantity,
			PaymentStatus:   "Pending",
		}
		if _, err := repo.Create(ctx, checkout); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout")
		}

		items := make([]models.CheckoutItem, 0, len(input.Items))
		for _, item := range input.Items {
			items = append(items, models.CheckoutItem{
				CheckoutID: checkout.ID,
				ProductID:  item.ProductID,
				Name:       item.Name,
				ImageURL:   item.ImageURL,
				PriceCents: item.PriceCents,
				Quantity:   item.Quantity,
			})
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout items")
		}
		checkout.Items = items

		out = checkout
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return out, nil
}

func validateCreate(input CreateInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkoutItems required")
	}
	for i, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("checkoutItems[%d].productId required", i))
		}
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("checkoutItems[%d].quantity must be at least 1", i))
		}
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if strings.TrimSpace(input.PaymentMethod) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "paymentMethod required")
	}
	if input.TotalPriceCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "totalPrice required")
	}
	if input.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity required")
	}
	return nil
}

// RecordPayment applies only the supplied fields. The payment provider drives
// this independently of finalize, which stays an explicit client step.
func (s *service) RecordPayment(ctx context.Context, checkoutID, actorUserID uuid.UUID, input PaymentInput) (*models.Checkout, error) {
	if checkoutID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout id required")
	}

	var out *models.Checkout
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		checkout, err := repo.FindByID(ctx, checkoutID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "checkout not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout")
		}
		if checkout.UserID != actorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "checkout does not belong to user")
		}

		updates := map[string]any{}
		if input.PaymentStatus != nil {
			updates["payment_status"] = *input.PaymentStatus
			checkout.PaymentStatus = *input.PaymentStatus
		}
		if input.PaymentDetails != nil {
			updates["payment_details"] = input.PaymentDetails
			checkout.PaymentDetails = input.PaymentDetails
		}
		if input.IsPaid != nil {
			updates["is_paid"] = *input.IsPaid
			checkout.IsPaid = *input.IsPaid
			if *input.IsPaid && checkout.PaidAt == nil {
				now := time.Now()
				updates["paid_at"] = now
				checkout.PaidAt = &now
			}
		}
		if len(updates) == 0 {
			out = checkout
			return nil
		}

		if err := repo.UpdatePayment(ctx, checkoutID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment")
		}
		out = checkout
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return out, nil
}

// Finalize converts a paid checkout into an order exactly once. The
// conditional finalize update, order creation, cart deletion, and outbox
// events share one transaction.
func (s *service) Finalize(ctx context.Context, checkoutID, actorUserID uuid.UUID) (*models.Order, error) {
	if checkoutID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout id required")
	}
	if actorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var out *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		checkout, err := repo.FindByID(ctx, checkoutID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "checkout not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout")
		}
		if checkout.UserID != actorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "checkout does not belong to user")
		}
		if checkout.IsFinalized {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already finalized")
		}
		if !checkout.IsPaid {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout not paid")
		}

		now := time.Now()
		won, err := repo.MarkFinalized(ctx, checkoutID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark finalized")
		}
		if !won {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already finalized")
		}

		orderRepo := s.orders.WithTx(tx)
		order := &models.Order{
			UserID:          actorUserID,
			ShippingAddress: checkout.ShippingAddress,
			PaymentMethod:   checkout.PaymentMethod,
			TotalPriceCents: checkout.TotalPriceCents,
			PaymentStatus:   checkout.PaymentStatus,
			PaymentDetails:  checkout.PaymentDetails,
			IsPaid:          checkout.IsPaid,
			PaidAt:          checkout.PaidAt,
			Status:          enums.OrderStatusProcessing,
		}
		if _, err := orderRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		items := make([]models.OrderItem, 0, len(checkout.Items))
		for _, line := range checkout.Items {
			items = append(items, models.OrderItem{
				OrderID:    order.ID,
				ProductID:  line.ProductID,
				Name:       line.Name,
				ImageURL:   line.ImageURL,
				PriceCents: line.PriceCents,
				Quantity:   line.Quantity,
			})
		}
		if err := orderRepo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}
		order.Items = items

		// The cart served its purpose; its absence is not an error.
		if err := s.carts.WithTx(tx).DeleteByUserID(ctx, actorUserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart")
		}

		actor := &outbox.ActorRef{UserID: actorUserID, Role: enums.UserRoleCustomer.String()}
		finalized := CheckoutFinalizedEvent{
			CheckoutID:      checkout.ID,
			OrderID:         order.ID,
			UserID:          actorUserID,
			TotalPriceCents: checkout.TotalPriceCents,
		}
		if err := s.outbox.Emit(tx, enums.AggregateCheckout, checkout.ID, enums.EventCheckoutFinalized, actor, finalized); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit checkout event")
		}
		created := OrderCreatedEvent{
			OrderID:         order.ID,
			UserID:          actorUserID,
			TotalPriceCents: order.TotalPriceCents,
			ItemCount:       len(items),
		}
		if err := s.outbox.Emit(tx, enums.AggregateOrder, order.ID, enums.EventOrderCreated, actor, created); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order event")
		}

		out = order
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return out, nil
}

func asAppError(err error) error {
	var appErr *pkgerrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout operation")
}
