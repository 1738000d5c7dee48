package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	"github.com/keepsakeshop/keepsake-backend/pkg/pagination"
)

// Filters narrows a catalog listing. Zero values mean "no constraint".
type Filters struct {
	Category      string
	Collection    string
	AgeBand       string
	Search        string
	Featured      *bool
	MinPriceCents *int
	MaxPriceCents *int
	Sort          Sort
}

// Sort selects the listing order.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortRating    Sort = "rating"
)

// ProductList is one page of products with an optional continuation cursor.
type ProductList struct {
	Products   []models.Product
	NextCursor string
}

// Repository defines persistence operations for the catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filters Filters, params pagination.Params) (*ProductList, error)
	ListSimilar(ctx context.Context, product *models.Product, limit int) ([]models.Product, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateRating(ctx context.Context, id uuid.UUID, rating float64, numReviews int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service defines catalog reads plus the admin mutations.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filters Filters, params pagination.Params) (*ProductList, error)
	Similar(ctx context.Context, id uuid.UUID, limit int) ([]models.Product, error)
	AdminCreate(ctx context.Context, input CreateInput) (*models.Product, error)
	AdminUpdate(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Product, error)
	AdminDelete(ctx context.Context, id uuid.UUID) error
}

// CreateInput carries a new catalog listing.
type CreateInput struct {
	SKU                string
	Name               string
	Description        string
	Category           string
	Collections        []string
	AgeBand            string
	PriceCents         int
	DiscountPriceCents *int
	CountInStock       int
	ImageURL           string
	ImageAltText       *string
	IsFeatured         bool
}

// UpdateInput applies only the non-nil fields.
type UpdateInput struct {
	Name               *string
	Description        *string
	Category           *string
	Collections        []string
	AgeBand            *string
	PriceCents         *int
	DiscountPriceCents *int
	ClearDiscount      bool
	CountInStock       *int
	ImageURL           *string
	ImageAltText       *string
	IsFeatured         *bool
}
