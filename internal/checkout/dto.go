package checkout

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	"github.com/keepsakeshop/keepsake-backend/pkg/types"
)

// CheckoutItemDTO is one snapshotted line of a checkout attempt.
type CheckoutItemDTO struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	ImageURL   string    `json:"image_url"`
	PriceCents int       `json:"price_cents"`
	Quantity   int       `json:"quantity"`
}

// CheckoutDTO is the wire shape of a checkout attempt.
type CheckoutDTO struct {
	ID              uuid.UUID             `json:"id"`
	UserID          uuid.UUID             `json:"user_id"`
	Items           []CheckoutItemDTO     `json:"items"`
	ShippingAddress types.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                `json:"payment_method"`
	TotalPriceCents int                   `json:"total_price_cents"`
	Quantity        int                   `json:"quantity"`
	PaymentStatus   string                `json:"payment_status"`
	PaymentDetails  json.RawMessage       `json:"payment_details,omitempty"`
	IsPaid          bool                  `json:"is_paid"`
	PaidAt          *time.Time            `json:"paid_at,omitempty"`
	IsFinalized     bool                  `json:"is_finalized"`
	FinalizedAt     *time.Time            `json:"finalized_at,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// FromModel maps a persisted checkout onto its wire shape.
func FromModel(c *models.Checkout) *CheckoutDTO {
	if c == nil {
		return nil
	}
	dto := &CheckoutDTO{
		ID:              c.ID,
		UserID:          c.UserID,
		Items:           make([]CheckoutItemDTO, 0, len(c.Items)),
		ShippingAddress: c.ShippingAddress,
		PaymentMethod:   c.PaymentMethod,
		TotalPriceCents: c.TotalPriceCents,
		Quantity:        c.Quantity,
		PaymentStatus:   c.PaymentStatus,
		PaymentDetails:  c.PaymentDetails,
		IsPaid:          c.IsPaid,
		PaidAt:          c.PaidAt,
		IsFinalized:     c.IsFinalized,
		FinalizedAt:     c.FinalizedAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	for _, item := range c.Items {
		dto.Items = append(dto.Items, CheckoutItemDTO{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Name:       item.Name,
			ImageURL:   item.ImageURL,
			PriceCents: item.PriceCents,
			Quantity:   item.Quantity,
		})
	}
	return dto
}
