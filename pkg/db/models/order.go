package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
	"github.com/keepsakeshop/keepsake-backend/pkg/types"
)

// Order is the durable record produced by finalizing a paid checkout. Items,
// address, and payment fields are copied at creation and never mutated; only
// the delivery status moves afterwards.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID             `gorm:"column:user_id;type:uuid;not null"`
	User            *User                 `gorm:"foreignKey:UserID"`
	Items           []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;not null"`
	PaymentMethod   string                `gorm:"column:payment_method;not null"`
	TotalPriceCents int                   `gorm:"column:total_price_cents;not null"`
	PaymentStatus   string                `gorm:"column:payment_status;not null"`
	PaymentDetails  json.RawMessage       `gorm:"column:payment_details;type:jsonb"`
	IsPaid          bool                  `gorm:"column:is_paid;not null"`
	PaidAt          *time.Time            `gorm:"column:paid_at"`
	Status          enums.OrderStatus     `gorm:"column:status;not null;default:'Processing'"`
	IsDelivered     bool                  `gorm:"column:is_delivered;not null;default:false"`
	DeliveredAt     *time.Time            `gorm:"column:delivered_at"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is one line copied from the finalized checkout.
type OrderItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name       string    `gorm:"column:name;not null"`
	ImageURL   string    `gorm:"column:image_url;not null"`
	PriceCents int       `gorm:"column:price_cents;not null"`
	Quantity   int       `gorm:"column:quantity;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
