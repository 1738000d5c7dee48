package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
)

// Aggregate is the rolled-up rating for one product.
type Aggregate struct {
	Rating     float64
	NumReviews int
}

// Repository persists reviews.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error)
	AggregateByProduct(ctx context.Context, productID uuid.UUID) (*Aggregate, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateInput carries one authenticated review submission.
type CreateInput struct {
	ProductID uuid.UUID
	UserID    uuid.UUID
	UserName  string
	Rating    int
	Comment   string
}

// DeleteInput identifies the review to remove and who is asking.
type DeleteInput struct {
	ProductID uuid.UUID
	ReviewID  uuid.UUID
	ActorID   uuid.UUID
	ActorRole enums.UserRole
}

// Service owns review submission, listing, and removal. Writes also refresh
// the product's aggregate rating in the same transaction.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error)
	Delete(ctx context.Context, input DeleteInput) error
}
