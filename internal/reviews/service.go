package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/internal/products"
	pkgdb "github.com/keepsakeshop/keepsake-backend/pkg/db"
	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     Repository
	products products.Repository
	tx       txRunner
}

// NewService builds a reviews service.
func NewService(repo Repository, productRepo products.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, products: productRepo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Review, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	var created *models.Review
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		reviewRepo := s.repo.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		if _, err := productRepo.FindByID(ctx, input.ProductID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		review := &models.Review{
			ProductID: input.ProductID,
			UserID:    input.UserID,
			UserName:  strings.TrimSpace(input.UserName),
			Rating:    input.Rating,
			Comment:   strings.TrimSpace(input.Comment),
		}
		if _, err := reviewRepo.Create(ctx, review); err != nil {
			if pkgdb.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "product already reviewed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
		}

		// The product row carries a denormalized average so catalog reads
		// never join against reviews.
		agg, err := reviewRepo.AggregateByProduct(ctx, input.ProductID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate ratings")
		}
		if err := productRepo.UpdateRating(ctx, input.ProductID, agg.Rating, agg.NumReviews); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product rating")
		}

		created = review
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "create review")
	}
	return created, nil
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	rows, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return rows, nil
}

// Delete removes a review for its author or an admin and refreshes the
// product's denormalized rating in the same transaction.
func (s *service) Delete(ctx context.Context, input DeleteInput) error {
	if input.ProductID == uuid.Nil || input.ReviewID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id and review id required")
	}
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		reviewRepo := s.repo.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		review, err := reviewRepo.FindByID(ctx, input.ReviewID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
		}
		if review.ProductID != input.ProductID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		if review.UserID != input.ActorID && input.ActorRole != enums.UserRoleAdmin {
			return pkgerrors.New(pkgerrors.CodeForbidden, "not the review author")
		}

		if err := reviewRepo.Delete(ctx, review.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
		}

		agg, err := reviewRepo.AggregateByProduct(ctx, input.ProductID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate ratings")
		}
		if err := productRepo.UpdateRating(ctx, input.ProductID, agg.Rating, agg.NumReviews); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product rating")
		}
		return nil
	})
	if err != nil {
		return asAppError(err, "delete review")
	}
	return nil
}

func validateCreate(input CreateInput) error {
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "productId required")
	}
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if strings.TrimSpace(input.Comment) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "comment required")
	}
	return nil
}

func asAppError(err error, msg string) error {
	var appErr *pkgerrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
