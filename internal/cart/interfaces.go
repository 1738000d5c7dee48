package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/internal/identity"
	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	"github.com/keepsakeshop/keepsake-backend/pkg/types"
)

// Repository defines persistence operations for carts and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByIdentity(ctx context.Context, id identity.Identity) (*models.Cart, error)
	// LockByIdentity loads the cart with a row lock so concurrent mutations
	// on the same cart key serialize. Must run inside a transaction.
	LockByIdentity(ctx context.Context, id identity.Identity) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	UpdateTotal(ctx context.Context, cartID uuid.UUID, totalCents int) error
	ReassignToUser(ctx context.Context, cartID, userID uuid.UUID) error
	Delete(ctx context.Context, cartID uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

// Service defines the cart aggregate operations.
type Service interface {
	Get(ctx context.Context, id identity.Identity) (*models.Cart, error)
	AddItem(ctx context.Context, id identity.Identity, input AddItemInput) (*models.Cart, error)
	SetItemQuantity(ctx context.Context, id identity.Identity, input SetQuantityInput) (*models.Cart, error)
	RemoveItem(ctx context.Context, id identity.Identity, input RemoveItemInput) (*models.Cart, error)
	Merge(ctx context.Context, guestToken string, userID uuid.UUID) (*models.Cart, error)
}

// AddItemInput carries one add-to-cart request.
type AddItemInput struct {
	ProductID     uuid.UUID
	Quantity      int
	Customization types.Customization
}

// SetQuantityInput addresses an existing line by product and customization.
type SetQuantityInput struct {
	ProductID     uuid.UUID
	Customization types.Customization
	Quantity      int
}

// RemoveItemInput addresses the line(s) to drop.
type RemoveItemInput struct {
	ProductID     uuid.UUID
	Customization types.Customization
}
