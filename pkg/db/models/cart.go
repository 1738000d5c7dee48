package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart holds the line items for exactly one identity: a registered user or an
// anonymous guest token. Exactly one of UserID/GuestToken is populated; the
// partial unique indexes keep at most one cart per key.
type Cart struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          *uuid.UUID `gorm:"column:user_id;type:uuid"`
	GuestToken      *string    `gorm:"column:guest_token"`
	TotalPriceCents int        `gorm:"column:total_price_cents;not null;default:0"`
	Items           []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// RecomputeTotal derives the cart total from the current item set.
func (c *Cart) RecomputeTotal() {
	total := 0
	for _, item := range c.Items {
		total += item.PriceCents * item.Quantity
	}
	c.TotalPriceCents = total
}
