package reminders

import (
	"time"

	"github.com/google/uuid"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
)

// ReminderDTO is the wire shape of a gift reminder.
type ReminderDTO struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	Title            string     `json:"title"`
	Description      *string    `json:"description,omitempty"`
	Date             time.Time  `json:"date"`
	NotifyBeforeDays int        `json:"notify_before_days"`
	NotifyAt         time.Time  `json:"notify_at"`
	NotifiedAt       *time.Time `json:"notified_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// FromModel maps a reminder row onto its wire shape.
func FromModel(r *models.Reminder) *ReminderDTO {
	if r == nil {
		return nil
	}
	return &ReminderDTO{
		ID:               r.ID,
		UserID:           r.UserID,
		Title:            r.Title,
		Description:      r.Description,
		Date:             r.Date,
		NotifyBeforeDays: r.NotifyBeforeDays,
		NotifyAt:         r.NotifyAt,
		NotifiedAt:       r.NotifiedAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// FromModels maps a reminder slice onto its wire shape.
func FromModels(rows []models.Reminder) []ReminderDTO {
	dtos := make([]ReminderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos
}
