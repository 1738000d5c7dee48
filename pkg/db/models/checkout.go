package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/keepsakeshop/keepsake-backend/pkg/types"
)

// Checkout is a per-attempt snapshot of a cart plus shipping and payment
// intent. It moves created -> paid -> finalized, never backwards. Finalizing
// produces an Order and retires the owner's cart.
type Checkout struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID             `gorm:"column:user_id;type:uuid;not null"`
	User            *User                 `gorm:"foreignKey:UserID"`
	Items           []CheckoutItem        `gorm:"foreignKey:CheckoutID;constraint:OnDelete:CASCADE"`
	ShippingAddress types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;not null"`
	PaymentMethod   string                `gorm:"column:payment_method;not null"`
	TotalPriceCents int                   `gorm:"column:total_price_cents;not null"`
	Quantity        int                   `gorm:"column:quantity;not null"`
	PaymentStatus   string                `gorm:"column:payment_status;not null;default:'Pending'"`
	PaymentDetails  json.RawMessage       `gorm:"column:payment_details;type:jsonb"`
	IsPaid          bool                  `gorm:"column:is_paid;not null;default:false"`
	PaidAt          *time.Time            `gorm:"column:paid_at"`
	IsFinalized     bool                  `gorm:"column:is_finalized;not null;default:false"`
	FinalizedAt     *time.Time            `gorm:"column:finalized_at"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// CheckoutItem is one snapshotted line of a checkout attempt. It carries no
// live product reference beyond the id.
type CheckoutItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CheckoutID uuid.UUID `gorm:"column:checkout_id;type:uuid;not null"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name       string    `gorm:"column:name;not null"`
	ImageURL   string    `gorm:"column:image_url;not null"`
	PriceCents int       `gorm:"column:price_cents;not null"`
	Quantity   int       `gorm:"column:quantity;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
