package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/keepsakeshop/keepsake-backend/api/middleware"
	"github.com/keepsakeshop/keepsake-backend/api/responses"
	"github.com/keepsakeshop/keepsake-backend/api/validators"
	cartsvc "github.com/keepsakeshop/keepsake-backend/internal/cart"
	"github.com/keepsakeshop/keepsake-backend/internal/identity"
	"github.com/keepsakeshop/keepsake-backend/pkg/config"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
	"github.com/keepsakeshop/keepsake-backend/pkg/types"
)

// CartFetch returns the caller's cart, minting a guest token for first-time
// visitors so the cart survives the next request.
func CartFetch(svc cartsvc.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		resolution := resolveCartIdentity(r, r.URL.Query().Get("guest_token"))
		persistMintedToken(w, cfg, resolution)

		cart, err := svc.Get(r.Context(), resolution.Identity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cartsvc.FromModel(cart))
	}
}

func CartAddItem(svc cartsvc.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var body cartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolution := resolveCartIdentity(r, body.GuestToken)
		persistMintedToken(w, cfg, resolution)

		cart, err := svc.AddItem(r.Context(), resolution.Identity, cartsvc.AddItemInput{
			ProductID:     body.ProductID,
			Quantity:      body.Quantity,
			Customization: body.Customization,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cartsvc.FromModel(cart))
	}
}

func CartSetQuantity(svc cartsvc.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var body cartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolution := resolveCartIdentity(r, body.GuestToken)
		persistMintedToken(w, cfg, resolution)

		cart, err := svc.SetItemQuantity(r.Context(), resolution.Identity, cartsvc.SetQuantityInput{
			ProductID:     body.ProductID,
			Customization: body.Customization,
			Quantity:      body.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cartsvc.FromModel(cart))
	}
}

func CartRemoveItem(svc cartsvc.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var body removeCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolution := resolveCartIdentity(r, body.GuestToken)
		persistMintedToken(w, cfg, resolution)

		cart, err := svc.RemoveItem(r.Context(), resolution.Identity, cartsvc.RemoveItemInput{
			ProductID:     body.ProductID,
			Customization: body.Customization,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cartsvc.FromModel(cart))
	}
}

// CartMerge folds a guest cart into the authenticated user's cart.
func CartMerge(svc cartsvc.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, appErr := contextUserID(r)
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		var body mergeCartRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		guestToken := body.GuestToken
		if guestToken == "" {
			guestToken = middleware.GuestTokenFromContext(r.Context())
		}
		if guestToken == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "guest token required"))
			return
		}

		cart, err := svc.Merge(r.Context(), guestToken, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		middleware.ClearGuestCookie(w, cfg.Guest)
		responses.WriteSuccess(w, cartsvc.FromModel(cart))
	}
}

type cartItemRequest struct {
	ProductID     uuid.UUID           `json:"product_id" validate:"required"`
	Quantity      int                 `json:"quantity" validate:"min=0"`
	Customization types.Customization `json:"customization,omitempty"`
	GuestToken    string              `json:"guest_token,omitempty"`
}

type removeCartItemRequest struct {
	ProductID     uuid.UUID           `json:"product_id" validate:"required"`
	Customization types.Customization `json:"customization,omitempty"`
	GuestToken    string              `json:"guest_token,omitempty"`
}

type mergeCartRequest struct {
	GuestToken string `json:"guest_token,omitempty"`
}

func resolveCartIdentity(r *http.Request, requestToken string) identity.Resolution {
	var userID uuid.UUID
	if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
		if parsed, err := uuid.Parse(raw); err == nil {
			userID = parsed
		}
	}
	return identity.Resolve(userID, middleware.GuestTokenFromContext(r.Context()), requestToken)
}

func persistMintedToken(w http.ResponseWriter, cfg *config.Config, resolution identity.Resolution) {
	if !resolution.Minted {
		return
	}
	if token, ok := resolution.Identity.GuestToken(); ok {
		middleware.SetGuestCookie(w, cfg.Guest, token)
	}
}

func contextUserID(r *http.Request) (uuid.UUID, *pkgerrors.Error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return id, nil
}
