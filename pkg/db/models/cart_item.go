package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/keepsakeshop/keepsake-backend/pkg/types"
)

// CartItem is one cart line. Name, image, and price are snapshotted from the
// product at add-time and never live-synced.
type CartItem struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID        uuid.UUID           `gorm:"column:cart_id;type:uuid;not null"`
	ProductID     uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	Name          string              `gorm:"column:name;not null"`
	ImageURL      string              `gorm:"column:image_url;not null"`
	PriceCents    int                 `gorm:"column:price_cents;not null"`
	Quantity      int                 `gorm:"column:quantity;not null"`
	Customization types.Customization `gorm:"column:customization;type:jsonb"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// Matches reports whether the line refers to the same product with an equal
// customization payload.
func (i CartItem) Matches(productID uuid.UUID, customization types.Customization) bool {
	return i.ProductID == productID && i.Customization.Equal(customization)
}
