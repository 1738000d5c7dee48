package models

import (
	"time"

	"github.com/google/uuid"
)

// Reminder is a gift occasion a user wants to be emailed about. NotifyAt is
// precomputed ("date minus notify_before_days") so the cron worker can scan
// for due reminders with one indexed query; NotifiedAt makes dispatch
// idempotent across runs and restarts.
type Reminder struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID  `gorm:"column:user_id;type:uuid;not null"`
	User             *User      `gorm:"foreignKey:UserID"`
	Title            string     `gorm:"column:title;not null"`
	Description      *string    `gorm:"column:description"`
	Date             time.Time  `gorm:"column:date;not null"`
	NotifyBeforeDays int        `gorm:"column:notify_before_days;not null;default:7"`
	NotifyAt         time.Time  `gorm:"column:notify_at;not null;index"`
	NotifiedAt       *time.Time `gorm:"column:notified_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
