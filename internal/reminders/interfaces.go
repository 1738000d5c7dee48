package reminders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
)

// Repository persists gift reminders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reminder, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Reminder, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindDue(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error)
	MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

// CreateInput carries a new reminder.
type CreateInput struct {
	UserID           uuid.UUID
	Title            string
	Description      *string
	Date             time.Time
	NotifyBeforeDays int
}

// UpdateInput is a partial reminder update; only non-nil fields apply.
type UpdateInput struct {
	Title            *string
	Description      *string
	Date             *time.Time
	NotifyBeforeDays *int
}

// Service owns the reminder lifecycle, including due-reminder dispatch.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Reminder, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]models.Reminder, error)
	Update(ctx context.Context, id, userID uuid.UUID, input UpdateInput) (*models.Reminder, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	DispatchDue(ctx context.Context, now time.Time) (int, error)
}
