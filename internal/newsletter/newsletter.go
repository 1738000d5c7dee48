// Package newsletter handles mailing-list signups.
package newsletter

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"gorm.io/gorm"

	pkgdb "github.com/keepsakeshop/keepsake-backend/pkg/db"
	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
)

// Repository persists subscribers.
type Repository interface {
	Create(ctx context.Context, subscriber *models.Subscriber) (*models.Subscriber, error)
}

// Service owns newsletter subscription.
type Service interface {
	Subscribe(ctx context.Context, email string) (*models.Subscriber, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a subscribers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, subscriber *models.Subscriber) (*models.Subscriber, error) {
	if err := r.db.WithContext(ctx).Create(subscriber).Error; err != nil {
		return nil, err
	}
	return subscriber, nil
}

type service struct {
	repo Repository
}

// NewService builds a newsletter service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("newsletter repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Subscribe(ctx context.Context, email string) (*models.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is not valid")
	}

	subscriber := &models.Subscriber{Email: email}
	if _, err := s.repo.Create(ctx, subscriber); err != nil {
		if pkgdb.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already subscribed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscriber")
	}
	return subscriber, nil
}
