package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
)

// ResetRepository persists single-use password reset tokens.
type ResetRepository interface {
	WithTx(tx *gorm.DB) ResetRepository
	Create(ctx context.Context, reset *models.PasswordReset) (*models.PasswordReset, error)
	FindByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error)
	MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type resetRepository struct {
	db *gorm.DB
}

// NewResetRepository builds a password reset repository bound to the provided DB.
func NewResetRepository(db *gorm.DB) ResetRepository {
	return &resetRepository{db: db}
}

func (r *resetRepository) WithTx(tx *gorm.DB) ResetRepository {
	if tx == nil {
		return r
	}
	return &resetRepository{db: tx}
}

func (r *resetRepository) Create(ctx context.Context, reset *models.PasswordReset) (*models.PasswordReset, error) {
	if err := r.db.WithContext(ctx).Create(reset).Error; err != nil {
		return nil, err
	}
	return reset, nil
}

func (r *resetRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error) {
	var reset models.PasswordReset
	err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&reset).Error
	if err != nil {
		return nil, err
	}
	return &reset, nil
}

// MarkUsed stamps used_at only when it is still unset, so a token redeems at
// most once even under concurrent submissions.
func (r *resetRepository) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PasswordReset{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *resetRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.PasswordReset{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
