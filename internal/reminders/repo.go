package reminders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reminders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error) {
	if err := r.db.WithContext(ctx).Create(reminder).Error; err != nil {
		return nil, err
	}
	return reminder, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reminder, error) {
	var reminder models.Reminder
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&reminder).Error
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Reminder, error) {
	var rows []models.Reminder
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Reminder{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Reminder{}).Error
}

func (r *repository) FindDue(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error) {
	var rows []models.Reminder
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("notify_at <= ? AND notified_at IS NULL", now).
		Order("notify_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkNotified stamps notified_at only when it is still unset, so a reminder
// is dispatched at most once even when two workers pick it up together.
func (r *repository) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Reminder{}).
		Where("id = ? AND notified_at IS NULL", id).
		Update("notified_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
