package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
	"github.com/keepsakeshop/keepsake-backend/pkg/pagination"
)

// Repository defines persistence operations for orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateItems(ctx context.Context, items []models.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListAll(ctx context.Context, params pagination.Params) (*OrderList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service defines order reads plus the administrative status transition.
type Service interface {
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	AdminList(ctx context.Context, params pagination.Params) (*OrderList, error)
	Get(ctx context.Context, orderID, actorUserID uuid.UUID, actorRole enums.UserRole) (*models.Order, error)
	AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, actorUserID uuid.UUID) (*models.Order, error)
	AdminDelete(ctx context.Context, orderID uuid.UUID) error
}

// OrderList is one page of orders with an optional continuation cursor.
type OrderList struct {
	Orders     []models.Order
	NextCursor string
}
