package controllers

import (
	"net/http"
	"strings"

	"github.com/keepsakeshop/keepsake-backend/api/middleware"
	"github.com/keepsakeshop/keepsake-backend/api/responses"
	"github.com/keepsakeshop/keepsake-backend/api/validators"
	ordersvc "github.com/keepsakeshop/keepsake-backend/internal/orders"
	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
	"github.com/keepsakeshop/keepsake-backend/pkg/pagination"
)

// MyOrders lists the caller's orders, newest first.
func MyOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, appErr := contextUserID(r)
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListMine(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, ordersvc.ListFromModel(list))
	}
}

// OrderDetail serves one order to its owner or to an admin.
func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, appErr := contextUserID(r)
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		orderID, appErr := pathUUID(r, "orderId", "order id")
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		role := enums.UserRole(middleware.RoleFromContext(r.Context()))
		order, err := svc.Get(r.Context(), orderID, userID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, ordersvc.FromModel(order))
	}
}

func AdminOrdersList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.AdminList(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, ordersvc.ListFromModel(list))
	}
}

// AdminUpdateOrderStatus moves an order along its delivery lifecycle.
func AdminUpdateOrderStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		actorID, appErr := contextUserID(r)
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		orderID, appErr := pathUUID(r, "orderId", "order id")
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		var body updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(strings.TrimSpace(body.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		order, err := svc.AdminUpdateStatus(r.Context(), orderID, status, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, ordersvc.FromModel(order))
	}
}

func AdminDeleteOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, appErr := pathUUID(r, "orderId", "order id")
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		if err := svc.AdminDelete(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	}, nil
}
