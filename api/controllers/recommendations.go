package controllers

import (
	"net/http"

	"github.com/keepsakeshop/keepsake-backend/api/responses"
	"github.com/keepsakeshop/keepsake-backend/api/validators"
	productsvc "github.com/keepsakeshop/keepsake-backend/internal/products"
	recsvc "github.com/keepsakeshop/keepsake-backend/internal/recommendations"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
)

// Recommendations returns gift suggestions matching the submitted
// preferences.
func Recommendations(svc recsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recommendation service unavailable"))
			return
		}

		var body recommendationsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.Recommend(r.Context(), recsvc.Preferences{
			AgeBand:       body.AgeBand,
			Categories:    body.Categories,
			MaxPriceCents: body.MaxPriceCents,
			Limit:         body.Limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"products": productsvc.FromModels(products)})
	}
}

type recommendationsRequest struct {
	AgeBand       string   `json:"age_band,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	MaxPriceCents *int     `json:"max_price_cents,omitempty" validate:"omitempty,min=0"`
	Limit         int      `json:"limit,omitempty" validate:"omitempty,min=1"`
}
