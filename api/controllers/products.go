package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/keepsakeshop/keepsake-backend/api/responses"
	"github.com/keepsakeshop/keepsake-backend/api/validators"
	productsvc "github.com/keepsakeshop/keepsake-backend/internal/products"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
	"github.com/keepsakeshop/keepsake-backend/pkg/pagination"
)

const maxSimilarProducts = 24

// ProductsList serves the public catalog listing with filters and cursor
// pagination.
func ProductsList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		filters, err := parseProductFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), filters, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, productsvc.ListFromModel(list))
	}
}

func ProductDetail(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, appErr := pathUUID(r, "productId", "product id")
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, productsvc.FromModel(product))
	}
}

// ProductSimilar serves in-stock catalog neighbours of one product.
func ProductSimilar(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, appErr := pathUUID(r, "productId", "product id")
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, maxSimilarProducts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.Similar(r.Context(), id, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"products": productsvc.FromModels(products)})
	}
}

func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.AdminCreate(r.Context(), body.toCreateInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, productsvc.FromModel(product))
	}
}

func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, appErr := pathUUID(r, "productId", "product id")
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.AdminUpdate(r.Context(), id, body.toUpdateInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, productsvc.FromModel(product))
	}
}

func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, appErr := pathUUID(r, "productId", "product id")
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		if err := svc.AdminDelete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type createProductRequest struct {
	SKU                string   `json:"sku" validate:"required"`
	Name               string   `json:"name" validate:"required"`
	Description        string   `json:"description" validate:"required"`
	Category           string   `json:"category" validate:"required"`
	Collections        []string `json:"collections,omitempty"`
	AgeBand            string   `json:"age_band,omitempty"`
	PriceCents         int      `json:"price_cents" validate:"min=0"`
	DiscountPriceCents *int     `json:"discount_price_cents,omitempty" validate:"omitempty,min=0"`
	CountInStock       int      `json:"count_in_stock" validate:"min=0"`
	ImageURL           string   `json:"image_url" validate:"required"`
	ImageAltText       *string  `json:"image_alt_text,omitempty"`
	IsFeatured         bool     `json:"is_featured,omitempty"`
}

func (r createProductRequest) toCreateInput() productsvc.CreateInput {
	return productsvc.CreateInput{
		SKU:                strings.TrimSpace(r.SKU),
		Name:               strings.TrimSpace(r.Name),
		Description:        r.Description,
		Category:           strings.TrimSpace(r.Category),
		Collections:        r.Collections,
		AgeBand:            strings.TrimSpace(r.AgeBand),
		PriceCents:         r.PriceCents,
		DiscountPriceCents: r.DiscountPriceCents,
		CountInStock:       r.CountInStock,
		ImageURL:           strings.TrimSpace(r.ImageURL),
		ImageAltText:       r.ImageAltText,
		IsFeatured:         r.IsFeatured,
	}
}

type updateProductRequest struct {
	Name               *string  `json:"name,omitempty"`
	Description        *string  `json:"description,omitempty"`
	Category           *string  `json:"category,omitempty"`
	Collections        []string `json:"collections,omitempty"`
	AgeBand            *string  `json:"age_band,omitempty"`
	PriceCents         *int     `json:"price_cents,omitempty" validate:"omitempty,min=0"`
	DiscountPriceCents *int     `json:"discount_price_cents,omitempty" validate:"omitempty,min=0"`
	ClearDiscount      bool     `json:"clear_discount,omitempty"`
	CountInStock       *int     `json:"count_in_stock,omitempty" validate:"omitempty,min=0"`
	ImageURL           *string  `json:"image_url,omitempty"`
	ImageAltText       *string  `json:"image_alt_text,omitempty"`
	IsFeatured         *bool    `json:"is_featured,omitempty"`
}

func (r updateProductRequest) toUpdateInput() productsvc.UpdateInput {
	return productsvc.UpdateInput{
		Name:               r.Name,
		Description:        r.Description,
		Category:           r.Category,
		Collections:        r.Collections,
		AgeBand:            r.AgeBand,
		PriceCents:         r.PriceCents,
		DiscountPriceCents: r.DiscountPriceCents,
		ClearDiscount:      r.ClearDiscount,
		CountInStock:       r.CountInStock,
		ImageURL:           r.ImageURL,
		ImageAltText:       r.ImageAltText,
		IsFeatured:         r.IsFeatured,
	}
}

func parseProductFilters(r *http.Request) (productsvc.Filters, error) {
	q := r.URL.Query()
	filters := productsvc.Filters{
		Category:   strings.TrimSpace(q.Get("category")),
		Collection: strings.TrimSpace(q.Get("collection")),
		AgeBand:    strings.TrimSpace(q.Get("age_band")),
		Search:     strings.TrimSpace(q.Get("search")),
	}

	if raw := strings.TrimSpace(q.Get("featured")); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return productsvc.Filters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid featured flag")
		}
		filters.Featured = &featured
	}

	for key, dest := range map[string]**int{
		"min_price_cents": &filters.MinPriceCents,
		"max_price_cents": &filters.MaxPriceCents,
	} {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			return productsvc.Filters{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+key)
		}
		*dest = &value
	}

	if raw := strings.TrimSpace(q.Get("sort")); raw != "" {
		sort := productsvc.Sort(raw)
		switch sort {
		case productsvc.SortNewest, productsvc.SortPriceAsc, productsvc.SortPriceDesc, productsvc.SortRating:
			filters.Sort = sort
		default:
			return productsvc.Filters{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid sort")
		}
	}

	return filters, nil
}

func pathUUID(r *http.Request, param, label string) (uuid.UUID, *pkgerrors.Error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, label+" required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	return id, nil
}
