package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
)

// Repository defines persistence operations for checkout attempts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, checkout *models.Checkout) (*models.Checkout, error)
	CreateItems(ctx context.Context, items []models.CheckoutItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Checkout, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, updates map[string]any) error
	// MarkFinalized flips is_finalized with a conditional update and reports
	// whether this call won the transition. At most one caller ever gets true.
	MarkFinalized(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a checkout repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, checkout *models.Checkout) (*models.Checkout, error) {
	if err := r.db.WithContext(ctx).Create(checkout).Error; err != nil {
		return nil, err
	}
	return checkout, nil
}

func (r *repository) CreateItems(ctx context.Context, items []models.CheckoutItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
	var checkout models.Checkout
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&checkout).Error
	if err != nil {
		return nil, err
	}
	return &checkout, nil
}

func (r *repository) UpdatePayment(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Checkout{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) MarkFinalized(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Checkout{}).
		Where("id = ? AND is_finalized = ?", id, false).
		Updates(map[string]any{
			"is_finalized": true,
			"finalized_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
