package recommendations

import (
	"context"
	"errors"
	"testing"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
)

type stubRepo struct {
	got  Preferences
	rows []models.Product
}

func (s *stubRepo) Recommend(ctx context.Context, prefs Preferences) ([]models.Product, error) {
	s.got = prefs
	return s.rows, nil
}

func TestRecommendDefaultsLimit(t *testing.T) {
	repo := &stubRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.Recommend(context.Background(), Preferences{AgeBand: "Adult"}); err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if repo.got.Limit != defaultLimit {
		t.Fatalf("expected default limit %d, got %d", defaultLimit, repo.got.Limit)
	}
}

func TestRecommendCapsLimit(t *testing.T) {
	repo := &stubRepo{}
	svc, _ := NewService(repo)

	if _, err := svc.Recommend(context.Background(), Preferences{Limit: 500}); err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if repo.got.Limit != maxLimit {
		t.Fatalf("expected capped limit %d, got %d", maxLimit, repo.got.Limit)
	}
}

func TestRecommendRejectsNegativeBudget(t *testing.T) {
	svc, _ := NewService(&stubRepo{})
	budget := -100

	_, err := svc.Recommend(context.Background(), Preferences{MaxPriceCents: &budget})
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
