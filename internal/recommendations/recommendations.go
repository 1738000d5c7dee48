// Package recommendations turns gift-finder preferences into a filtered,
// rating-ordered catalog query.
package recommendations

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
)

const (
	defaultLimit = 12
	maxLimit     = 50
)

// Preferences are the gift-finder answers.
type Preferences struct {
	AgeBand       string
	Categories    []string
	MaxPriceCents *int
	Limit         int
}

// Repository queries the catalog for recommendation candidates.
type Repository interface {
	Recommend(ctx context.Context, prefs Preferences) ([]models.Product, error)
}

// Service resolves preferences into products.
type Service interface {
	Recommend(ctx context.Context, prefs Preferences) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a recommendations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Recommend(ctx context.Context, prefs Preferences) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("count_in_stock > 0")

	if prefs.AgeBand != "" {
		query = query.Where("age_band = ? OR age_band = ?", prefs.AgeBand, "Any")
	}
	if len(prefs.Categories) > 0 {
		query = query.Where("category IN ?", prefs.Categories)
	}
	if prefs.MaxPriceCents != nil {
		query = query.Where("COALESCE(discount_price_cents, price_cents) <= ?", *prefs.MaxPriceCents)
	}

	var rows []models.Product
	err := query.
		Order("rating DESC").
		Order("num_reviews DESC").
		Order("created_at DESC").
		Limit(prefs.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type service struct {
	repo Repository
}

// NewService builds a recommendations service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("recommendations repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Recommend(ctx context.Context, prefs Preferences) ([]models.Product, error) {
	if prefs.MaxPriceCents != nil && *prefs.MaxPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "maxPrice must not be negative")
	}
	if prefs.Limit <= 0 {
		prefs.Limit = defaultLimit
	}
	if prefs.Limit > maxLimit {
		prefs.Limit = maxLimit
	}

	rows, err := s.repo.Recommend(ctx, prefs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query recommendations")
	}
	return rows, nil
}
