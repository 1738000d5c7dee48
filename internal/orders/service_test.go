package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
	"github.com/keepsakeshop/keepsake-backend/pkg/outbox"
	"github.com/keepsakeshop/keepsake-backend/pkg/pagination"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOrdersRepo struct {
	orders map[uuid.UUID]*models.Order
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	stored := *order
	s.orders[order.ID] = &stored
	return order, nil
}

func (s *stubOrdersRepo) CreateItems(ctx context.Context, items []models.OrderItem) error {
	return nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if stored, ok := s.orders[id]; ok {
		copied := *stored
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	list := &OrderList{}
	for _, order := range s.orders {
		if order.UserID == userID {
			list.Orders = append(list.Orders, *order)
		}
	}
	return list, nil
}

func (s *stubOrdersRepo) ListAll(ctx context.Context, params pagination.Params) (*OrderList, error) {
	list := &OrderList{}
	for _, order := range s.orders {
		list.Orders = append(list.Orders, *order)
	}
	return list, nil
}

func (s *stubOrdersRepo) UpdateStatus(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	stored, ok := s.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["status"]; ok {
		stored.Status = v.(enums.OrderStatus)
	}
	if v, ok := updates["is_delivered"]; ok {
		stored.IsDelivered = v.(bool)
	}
	return nil
}

func (s *stubOrdersRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.orders, id)
	return nil
}

type stubEmitter struct {
	events []enums.OutboxEventType
}

func (s *stubEmitter) Emit(tx *gorm.DB, aggregate enums.OutboxAggregateType, aggregateID uuid.UUID, eventType enums.OutboxEventType, actor *outbox.ActorRef, data any) error {
	s.events = append(s.events, eventType)
	return nil
}

func newTestService(t *testing.T, repo *stubOrdersRepo) (Service, *stubEmitter) {
	t.Helper()
	emitter := &stubEmitter{}
	svc, err := NewService(repo, stubTxRunner{}, emitter)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, emitter
}

func seedOrder(repo *stubOrdersRepo, userID uuid.UUID) *models.Order {
	order := &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		TotalPriceCents: 2500,
		PaymentStatus:   "succeeded",
		IsPaid:          true,
		Status:          enums.OrderStatusProcessing,
	}
	stored := *order
	repo.orders[order.ID] = &stored
	return order
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}

func TestListMineRequiresUser(t *testing.T) {
	svc, _ := newTestService(t, newStubOrdersRepo())

	_, err := svc.ListMine(context.Background(), uuid.Nil, pagination.Params{})
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestGetOwnOrderSucceeds(t *testing.T) {
	repo := newStubOrdersRepo()
	userID := uuid.New()
	seeded := seedOrder(repo, userID)
	svc, _ := newTestService(t, repo)

	order, err := svc.Get(context.Background(), seeded.ID, userID, enums.UserRoleCustomer)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if order.ID != seeded.ID {
		t.Fatalf("expected order %s, got %s", seeded.ID, order.ID)
	}
}

func TestGetForeignOrderForbiddenForCustomer(t *testing.T) {
	repo := newStubOrdersRepo()
	seeded := seedOrder(repo, uuid.New())
	svc, _ := newTestService(t, repo)

	_, err := svc.Get(context.Background(), seeded.ID, uuid.New(), enums.UserRoleCustomer)
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestGetForeignOrderAllowedForAdmin(t *testing.T) {
	repo := newStubOrdersRepo()
	seeded := seedOrder(repo, uuid.New())
	svc, _ := newTestService(t, repo)

	if _, err := svc.Get(context.Background(), seeded.ID, uuid.New(), enums.UserRoleAdmin); err != nil {
		t.Fatalf("admin Get: %v", err)
	}
}

func TestGetUnknownOrderFailsNotFound(t *testing.T) {
	svc, _ := newTestService(t, newStubOrdersRepo())

	_, err := svc.Get(context.Background(), uuid.New(), uuid.New(), enums.UserRoleCustomer)
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestAdminUpdateStatusDeliveredStampsTimestamp(t *testing.T) {
	repo := newStubOrdersRepo()
	seeded := seedOrder(repo, uuid.New())
	svc, emitter := newTestService(t, repo)

	order, err := svc.AdminUpdateStatus(context.Background(), seeded.ID, enums.OrderStatusDelivered, uuid.New())
	if err != nil {
		t.Fatalf("AdminUpdateStatus: %v", err)
	}
	if order.Status != enums.OrderStatusDelivered || !order.IsDelivered || order.DeliveredAt == nil {
		t.Fatalf("expected delivered order with timestamp, got %+v", order)
	}
	if len(emitter.events) != 1 || emitter.events[0] != enums.EventOrderStatusChanged {
		t.Fatalf("expected status event, got %v", emitter.events)
	}
}

func TestAdminUpdateStatusShippedDoesNotStampDelivery(t *testing.T) {
	repo := newStubOrdersRepo()
	seeded := seedOrder(repo, uuid.New())
	svc, _ := newTestService(t, repo)

	order, err := svc.AdminUpdateStatus(context.Background(), seeded.ID, enums.OrderStatusShipped, uuid.New())
	if err != nil {
		t.Fatalf("AdminUpdateStatus: %v", err)
	}
	if order.IsDelivered || order.DeliveredAt != nil {
		t.Fatalf("shipped must not set delivery fields, got %+v", order)
	}
}

func TestAdminUpdateStatusRejectsInvalidValue(t *testing.T) {
	repo := newStubOrdersRepo()
	seeded := seedOrder(repo, uuid.New())
	svc, _ := newTestService(t, repo)

	_, err := svc.AdminUpdateStatus(context.Background(), seeded.ID, enums.OrderStatus("Teleported"), uuid.New())
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestAdminDeleteUnknownOrderFailsNotFound(t *testing.T) {
	svc, _ := newTestService(t, newStubOrdersRepo())

	err := svc.AdminDelete(context.Background(), uuid.New())
	expectCode(t, err, pkgerrors.CodeNotFound)
}
