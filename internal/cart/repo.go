package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/keepsakeshop/keepsake-backend/internal/identity"
	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func identityScope(id identity.Identity) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if userID, ok := id.UserID(); ok {
			return db.Where("user_id = ?", userID)
		}
		token, _ := id.GuestToken()
		return db.Where("guest_token = ?", token)
	}
}

func (r *repository) FindByIdentity(ctx context.Context, id identity.Identity) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Scopes(identityScope(id)).
		Preload("Items").
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) LockByIdentity(ctx context.Context, id identity.Identity) (*models.Cart, error) {
	query := r.db.WithContext(ctx).Scopes(identityScope(id))
	// SQLite rejects FOR UPDATE; it serializes writers with a database
	// lock instead, so the row lock is only taken on Postgres.
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var cart models.Cart
	err := query.First(&cart).Error
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Order("created_at ASC").
		Find(&cart.Items).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

func (r *repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&models.CartItem{}).Error
}

func (r *repository) UpdateTotal(ctx context.Context, cartID uuid.UUID, totalCents int) error {
	return r.db.WithContext(ctx).Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("total_price_cents", totalCents).Error
}

func (r *repository) ReassignToUser(ctx context.Context, cartID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Cart{}).
		Where("id = ?", cartID).
		Updates(map[string]any{
			"user_id":     userID,
			"guest_token": nil,
		}).Error
}

func (r *repository) Delete(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", cartID).
		Delete(&models.Cart{}).Error
}

func (r *repository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Cart{}).Error
}
