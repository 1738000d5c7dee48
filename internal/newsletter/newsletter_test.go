package newsletter

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
)

type stubRepo struct {
	emails map[string]bool
}

func (s *stubRepo) Create(ctx context.Context, subscriber *models.Subscriber) (*models.Subscriber, error) {
	if s.emails[subscriber.Email] {
		return nil, gorm.ErrDuplicatedKey
	}
	subscriber.ID = uuid.New()
	s.emails[subscriber.Email] = true
	return subscriber, nil
}

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(&stubRepo{emails: map[string]bool{}})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}

func TestSubscribeNormalizesEmail(t *testing.T) {
	svc := newTestService(t)

	subscriber, err := svc.Subscribe(context.Background(), "  Ada@Example.COM ")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if subscriber.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", subscriber.Email)
	}
}

func TestSubscribeDuplicateFailsConflict(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Subscribe(context.Background(), "ada@example.com"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	_, err := svc.Subscribe(context.Background(), "ADA@example.com")
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestSubscribeRejectsMalformedEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Subscribe(context.Background(), "not-an-email")
	expectCode(t, err, pkgerrors.CodeValidation)
}
