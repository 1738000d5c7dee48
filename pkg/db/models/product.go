package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is a catalog listing. The cart and checkout flows snapshot its
// name/image/price at add-time rather than referencing it live.
type Product struct {
	ID                 uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU                string         `gorm:"column:sku;not null;uniqueIndex"`
	Name               string         `gorm:"column:name;not null"`
	Description        string         `gorm:"column:description;not null"`
	Category           string         `gorm:"column:category;not null"`
	Collections        pq.StringArray `gorm:"column:collections;type:text[];not null;default:ARRAY[]::text[]"`
	AgeBand            string         `gorm:"column:age_band;not null;default:'Any'"`
	PriceCents         int            `gorm:"column:price_cents;not null"`
	DiscountPriceCents *int           `gorm:"column:discount_price_cents"`
	CountInStock       int            `gorm:"column:count_in_stock;not null;default:0"`
	ImageURL           string         `gorm:"column:image_url;not null"`
	ImageAltText       *string        `gorm:"column:image_alt_text"`
	IsFeatured         bool           `gorm:"column:is_featured;not null;default:false"`
	Rating             float64        `gorm:"column:rating;not null;default:0"`
	NumReviews         int            `gorm:"column:num_reviews;not null;default:0"`
	Reviews            []Review       `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePriceCents returns the discount price when one is set.
func (p Product) EffectivePriceCents() int {
	if p.DiscountPriceCents != nil && *p.DiscountPriceCents >= 0 && *p.DiscountPriceCents < p.PriceCents {
		return *p.DiscountPriceCents
	}
	return p.PriceCents
}
