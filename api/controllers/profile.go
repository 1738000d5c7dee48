package controllers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/api/responses"
	userrepo "github.com/keepsakeshop/keepsake-backend/internal/users"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
)

// Profile returns the caller's account without credential fields.
func Profile(users userrepo.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if users == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user repository unavailable"))
			return
		}

		userID, appErr := contextUserID(r)
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		user, err := users.FindByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user"))
			return
		}

		responses.WriteSuccess(w, userrepo.FromModel(user))
	}
}
