package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
)

// ProductDTO is the wire shape of a catalog listing.
type ProductDTO struct {
	ID                 uuid.UUID `json:"id"`
	SKU                string    `json:"sku"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Category           string    `json:"category"`
	Collections        []string  `json:"collections"`
	AgeBand            string    `json:"age_band"`
	PriceCents         int       `json:"price_cents"`
	DiscountPriceCents *int      `json:"discount_price_cents,omitempty"`
	CountInStock       int       `json:"count_in_stock"`
	ImageURL           string    `json:"image_url"`
	ImageAltText       *string   `json:"image_alt_text,omitempty"`
	IsFeatured         bool      `json:"is_featured"`
	Rating             float64   `json:"rating"`
	NumReviews         int       `json:"num_reviews"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ProductListDTO is one catalog page with an optional continuation cursor.
type ProductListDTO struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// FromModel maps a product row onto its wire shape.
func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	collections := make([]string, 0, len(p.Collections))
	collections = append(collections, p.Collections...)
	return &ProductDTO{
		ID:                 p.ID,
		SKU:                p.SKU,
		Name:               p.Name,
		Description:        p.Description,
		Category:           p.Category,
		Collections:        collections,
		AgeBand:            p.AgeBand,
		PriceCents:         p.PriceCents,
		DiscountPriceCents: p.DiscountPriceCents,
		CountInStock:       p.CountInStock,
		ImageURL:           p.ImageURL,
		ImageAltText:       p.ImageAltText,
		IsFeatured:         p.IsFeatured,
		Rating:             p.Rating,
		NumReviews:         p.NumReviews,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// FromModels maps a product slice onto its wire shape.
func FromModels(rows []models.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos
}

// ListFromModel maps one repository page onto its wire shape.
func ListFromModel(list *ProductList) *ProductListDTO {
	if list == nil {
		return nil
	}
	return &ProductListDTO{
		Products:   FromModels(list.Products),
		NextCursor: list.NextCursor,
	}
}
