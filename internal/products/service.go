package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	pkgdb "github.com/keepsakeshop/keepsake-backend/pkg/db"
	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
	"github.com/keepsakeshop/keepsake-backend/pkg/pagination"
)

type service struct {
	repo Repository
}

// NewService builds a catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, filters Filters, params pagination.Params) (*ProductList, error) {
	if filters.MinPriceCents != nil && *filters.MinPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minPrice must not be negative")
	}
	if filters.MaxPriceCents != nil && *filters.MaxPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "maxPrice must not be negative")
	}
	list, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}

func (s *service) Similar(ctx context.Context, id uuid.UUID, limit int) ([]models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListSimilar(ctx, product, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list similar products")
	}
	return rows, nil
}

func (s *service) AdminCreate(ctx context.Context, input CreateInput) (*models.Product, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		SKU:                strings.TrimSpace(input.SKU),
		Name:               strings.TrimSpace(input.Name),
		Description:        input.Description,
		Category:           input.Category,
		Collections:        pq.StringArray(input.Collections),
		AgeBand:            defaultAgeBand(input.AgeBand),
		PriceCents:         input.PriceCents,
		DiscountPriceCents: input.DiscountPriceCents,
		CountInStock:       input.CountInStock,
		ImageURL:           input.ImageURL,
		ImageAltText:       input.ImageAltText,
		IsFeatured:         input.IsFeatured,
	}
	if _, err := s.repo.Create(ctx, product); err != nil {
		if pkgdb.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return product, nil
}

func validateCreate(input CreateInput) error {
	if strings.TrimSpace(input.SKU) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category required")
	}
	if input.PriceCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.DiscountPriceCents != nil && *input.DiscountPriceCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "discountPrice must not be negative")
	}
	if input.CountInStock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "countInStock must not be negative")
	}
	if strings.TrimSpace(input.ImageURL) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "imageUrl required")
	}
	return nil
}

func defaultAgeBand(band string) string {
	if strings.TrimSpace(band) == "" {
		return "Any"
	}
	return band
}

func (s *service) AdminUpdate(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
		product.Name = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
		product.Description = *input.Description
	}
	if input.Category != nil {
		updates["category"] = *input.Category
		product.Category = *input.Category
	}
	if input.Collections != nil {
		collections := pq.StringArray(input.Collections)
		updates["collections"] = collections
		product.Collections = collections
	}
	if input.AgeBand != nil {
		updates["age_band"] = *input.AgeBand
		product.AgeBand = *input.AgeBand
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		updates["price_cents"] = *input.PriceCents
		product.PriceCents = *input.PriceCents
	}
	if input.ClearDiscount {
		updates["discount_price_cents"] = nil
		product.DiscountPriceCents = nil
	} else if input.DiscountPriceCents != nil {
		if *input.DiscountPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discountPrice must not be negative")
		}
		updates["discount_price_cents"] = *input.DiscountPriceCents
		product.DiscountPriceCents = input.DiscountPriceCents
	}
	if input.CountInStock != nil {
		if *input.CountInStock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "countInStock must not be negative")
		}
		updates["count_in_stock"] = *input.CountInStock
		product.CountInStock = *input.CountInStock
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
		product.ImageURL = *input.ImageURL
	}
	if input.ImageAltText != nil {
		updates["image_alt_text"] = *input.ImageAltText
		product.ImageAltText = input.ImageAltText
	}
	if input.IsFeatured != nil {
		updates["is_featured"] = *input.IsFeatured
		product.IsFeatured = *input.IsFeatured
	}
	if len(updates) == 0 {
		return product, nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return product, nil
}

func (s *service) AdminDelete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}
