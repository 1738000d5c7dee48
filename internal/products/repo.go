package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	"github.com/keepsakeshop/keepsake-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func applyFilters(query *gorm.DB, filters Filters) *gorm.DB {
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Collection != "" {
		query = query.Where("? = ANY(collections)", filters.Collection)
	}
	if filters.AgeBand != "" {
		query = query.Where("age_band = ?", filters.AgeBand)
	}
	if filters.Featured != nil {
		query = query.Where("is_featured = ?", *filters.Featured)
	}
	if filters.MinPriceCents != nil {
		query = query.Where("COALESCE(discount_price_cents, price_cents) >= ?", *filters.MinPriceCents)
	}
	if filters.MaxPriceCents != nil {
		query = query.Where("COALESCE(discount_price_cents, price_cents) <= ?", *filters.MaxPriceCents)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	return query
}

func (r *repository) List(ctx context.Context, filters Filters, params pagination.Params) (*ProductList, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := applyFilters(r.db.WithContext(ctx), filters).
		Limit(pagination.LimitWithBuffer(params.Limit))

	switch filters.Sort {
	case SortPriceAsc:
		query = query.Order("COALESCE(discount_price_cents, price_cents) ASC").Order("id ASC")
	case SortPriceDesc:
		query = query.Order("COALESCE(discount_price_cents, price_cents) DESC").Order("id ASC")
	case SortRating:
		query = query.Order("rating DESC").Order("id ASC")
	default:
		query = query.Order("created_at DESC").Order("id DESC")
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, err
		}
		if cursor != nil {
			query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
		}
	}

	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &ProductList{Products: rows}
	if len(rows) > limit {
		list.Products = rows[:limit]
		if filters.Sort == "" || filters.Sort == SortNewest {
			last := list.Products[limit-1]
			list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
				CreatedAt: last.CreatedAt,
				ID:        last.ID,
			})
		}
	}
	return list, nil
}

func (r *repository) ListSimilar(ctx context.Context, product *models.Product, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 8
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("id <> ?", product.ID).
		Where("category = ?", product.Category).
		Order("rating DESC").
		Order("num_reviews DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, numReviews int) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"rating":      rating,
			"num_reviews": numReviews,
		}).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Product{}).Error
}
