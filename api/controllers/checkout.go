package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/keepsakeshop/keepsake-backend/api/responses"
	"github.com/keepsakeshop/keepsake-backend/api/validators"
	checkoutsvc "github.com/keepsakeshop/keepsake-backend/internal/checkout"
	ordersvc "github.com/keepsakeshop/keepsake-backend/internal/orders"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
	"github.com/keepsakeshop/keepsake-backend/pkg/types"
)

// CheckoutCreate opens a checkout attempt from the client's cart snapshot.
func CheckoutCreate(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, appErr := contextUserID(r)
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		var body createCheckoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		checkout, err := svc.Create(r.Context(), body.toCreateInput(userID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutsvc.FromModel(checkout))
	}
}

// CheckoutPay records a payment attempt against an open checkout.
func CheckoutPay(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, appErr := contextUserID(r)
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		checkoutID, appErr := pathUUID(r, "checkoutId", "checkout id")
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		var body payCheckoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		checkout, err := svc.RecordPayment(r.Context(), checkoutID, userID, checkoutsvc.PaymentInput{
			PaymentStatus:  body.PaymentStatus,
			PaymentDetails: body.PaymentDetails,
			IsPaid:         body.IsPaid,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, checkoutsvc.FromModel(checkout))
	}
}

// CheckoutFinalize converts a paid checkout into an order exactly once.
func CheckoutFinalize(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, appErr := contextUserID(r)
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		checkoutID, appErr := pathUUID(r, "checkoutId", "checkout id")
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		order, err := svc.Finalize(r.Context(), checkoutID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, ordersvc.FromModel(order))
	}
}

type checkoutItemRequest struct {
	ProductID  uuid.UUID `json:"product_id" validate:"required"`
	Name       string    `json:"name" validate:"required"`
	ImageURL   string    `json:"image_url"`
	PriceCents int       `json:"price_cents" validate:"min=0"`
	Quantity   int       `json:"quantity" validate:"required,min=1"`
}

type createCheckoutRequest struct {
	Items           []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress types.ShippingAddress `json:"shipping_address" validate:"required"`
	PaymentMethod   string                `json:"payment_method" validate:"required"`
	TotalPriceCents int                   `json:"total_price_cents" validate:"min=0"`
	Quantity        int                   `json:"quantity" validate:"min=0"`
}

func (r createCheckoutRequest) toCreateInput(userID uuid.UUID) checkoutsvc.CreateInput {
	items := make([]checkoutsvc.ItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, checkoutsvc.ItemInput{
			ProductID:  item.ProductID,
			Name:       item.Name,
			ImageURL:   item.ImageURL,
			PriceCents: item.PriceCents,
			Quantity:   item.Quantity,
		})
	}
	return checkoutsvc.CreateInput{
		UserID:          userID,
		Items:           items,
		ShippingAddress: r.ShippingAddress,
		PaymentMethod:   r.PaymentMethod,
		TotalPriceCents: r.TotalPriceCents,
		Quantity:        r.Quantity,
	}
}

type payCheckoutRequest struct {
	PaymentStatus  *string         `json:"payment_status,omitempty"`
	PaymentDetails json.RawMessage `json:"payment_details,omitempty"`
	IsPaid         *bool           `json:"is_paid,omitempty"`
}
