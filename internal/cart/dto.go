package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	"github.com/keepsakeshop/keepsake-backend/pkg/types"
)

// CartItemDTO is one cart line on the wire.
type CartItemDTO struct {
	ID            uuid.UUID           `json:"id"`
	ProductID     uuid.UUID           `json:"product_id"`
	Name          string              `json:"name"`
	ImageURL      string              `json:"image_url"`
	PriceCents    int                 `json:"price_cents"`
	Quantity      int                 `json:"quantity"`
	Customization types.Customization `json:"customization"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// CartDTO is the wire shape of a cart. The guest token never leaves the
// server; the identity cookie is the only carrier.
type CartDTO struct {
	ID              uuid.UUID     `json:"id"`
	UserID          *uuid.UUID    `json:"user_id,omitempty"`
	Items           []CartItemDTO `json:"items"`
	TotalPriceCents int           `json:"total_price_cents"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// FromModel maps a persisted cart onto its wire shape.
func FromModel(c *models.Cart) *CartDTO {
	if c == nil {
		return nil
	}
	dto := &CartDTO{
		ID:              c.ID,
		UserID:          c.UserID,
		Items:           make([]CartItemDTO, 0, len(c.Items)),
		TotalPriceCents: c.TotalPriceCents,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	for _, item := range c.Items {
		dto.Items = append(dto.Items, CartItemDTO{
			ID:            item.ID,
			ProductID:     item.ProductID,
			Name:          item.Name,
			ImageURL:      item.ImageURL,
			PriceCents:    item.PriceCents,
			Quantity:      item.Quantity,
			Customization: item.Customization,
			CreatedAt:     item.CreatedAt,
			UpdatedAt:     item.UpdatedAt,
		})
	}
	return dto
}
