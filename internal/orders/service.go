package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
	"github.com/keepsakeshop/keepsake-backend/pkg/outbox"
	"github.com/keepsakeshop/keepsake-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(tx *gorm.DB, aggregate enums.OutboxAggregateType, aggregateID uuid.UUID, eventType enums.OutboxEventType, actor *outbox.ActorRef, data any) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxEmitter
}

// OrderStatusChangedEvent is emitted when an admin moves an order's status.
type OrderStatusChangedEvent struct {
	OrderID   uuid.UUID         `json:"order_id"`
	UserID    uuid.UUID         `json:"user_id"`
	Status    enums.OrderStatus `json:"status"`
	Delivered bool              `json:"delivered"`
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, emitter outboxEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{repo: repo, tx: tx, outbox: emitter}, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) AdminList(ctx context.Context, params pagination.Params) (*OrderList, error) {
	list, err := s.repo.ListAll(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

// Get returns one order. Customers may only read their own orders; admins may
// read any.
func (s *service) Get(ctx context.Context, orderID, actorUserID uuid.UUID, actorRole enums.UserRole) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != actorUserID && actorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	return order, nil
}

func (s *service) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, actorUserID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", status))
	}

	var out *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		updates := map[string]any{"status": status}
		order.Status = status
		if status == enums.OrderStatusDelivered {
			now := time.Now()
			updates["is_delivered"] = true
			updates["delivered_at"] = now
			order.IsDelivered = true
			order.DeliveredAt = &now
		}
		if err := repo.UpdateStatus(ctx, orderID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		event := OrderStatusChangedEvent{
			OrderID:   order.ID,
			UserID:    order.UserID,
			Status:    status,
			Delivered: order.IsDelivered,
		}
		actor := &outbox.ActorRef{UserID: actorUserID, Role: enums.UserRoleAdmin.String()}
		if err := s.outbox.Emit(tx, enums.AggregateOrder, order.ID, enums.EventOrderStatusChanged, actor, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit status event")
		}

		out = order
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return out, nil
}

func (s *service) AdminDelete(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if _, err := s.repo.FindByID(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if err := s.repo.Delete(ctx, orderID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}

func asAppError(err error) error {
	var appErr *pkgerrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order operation")
}
