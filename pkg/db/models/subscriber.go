package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber is a newsletter signup.
type Subscriber struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"column:email;not null;uniqueIndex:ux_subscribers_email"`
	SubscribedAt time.Time `gorm:"column:subscribed_at;autoCreateTime"`
}
