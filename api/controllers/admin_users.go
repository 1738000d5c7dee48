package controllers

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/api/responses"
	"github.com/keepsakeshop/keepsake-backend/api/validators"
	userrepo "github.com/keepsakeshop/keepsake-backend/internal/users"
	"github.com/keepsakeshop/keepsake-backend/pkg/config"
	pkgdb "github.com/keepsakeshop/keepsake-backend/pkg/db"
	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
	"github.com/keepsakeshop/keepsake-backend/pkg/security"
)

// AdminUsersList pages through all accounts, newest first.
func AdminUsersList(users userrepo.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if users == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user repository unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := users.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users"))
			return
		}

		dtos := make([]userrepo.UserDTO, 0, len(list.Users))
		for i := range list.Users {
			dtos = append(dtos, *userrepo.FromModel(&list.Users[i]))
		}
		responses.WriteSuccess(w, map[string]any{
			"users":       dtos,
			"next_cursor": list.NextCursor,
		})
	}
}

// AdminCreateUser provisions an account with an explicit role, bypassing the
// self-service registration flow.
func AdminCreateUser(users userrepo.Repository, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if users == nil || cfg == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user repository unavailable"))
			return
		}

		var body adminCreateUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role := enums.UserRoleCustomer
		if body.Role != "" {
			parsed, err := enums.ParseUserRole(body.Role)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
				return
			}
			role = parsed
		}

		hash, err := security.HashPassword(body.Password, cfg.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password"))
			return
		}

		user := &models.User{
			Name:         strings.TrimSpace(body.Name),
			Email:        strings.ToLower(strings.TrimSpace(body.Email)),
			PasswordHash: hash,
			Role:         role,
		}
		if _, err := users.Create(r.Context(), user); err != nil {
			if pkgdb.IsUniqueViolation(err) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "email already registered"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, userrepo.FromModel(user))
	}
}

// AdminUpdateUser patches profile fields, role, or password of any account.
func AdminUpdateUser(users userrepo.Repository, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if users == nil || cfg == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user repository unavailable"))
			return
		}

		userID, appErr := pathUUID(r, "userId", "user id")
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		var body adminUpdateUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updates := map[string]any{}
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty"))
				return
			}
			updates["name"] = name
		}
		if body.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*body.Email))
			if email == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "email must not be empty"))
				return
			}
			updates["email"] = email
		}
		if body.Role != nil {
			role, err := enums.ParseUserRole(*body.Role)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
				return
			}
			updates["role"] = role
		}
		if body.Password != nil {
			if len(*body.Password) < 8 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters"))
				return
			}
			hash, err := security.HashPassword(*body.Password, cfg.Password)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password"))
				return
			}
			updates["password_hash"] = hash
		}
		if len(updates) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update"))
			return
		}

		if err := users.Update(r.Context(), userID, updates); err != nil {
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
			case pkgdb.IsUniqueViolation(err):
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "email already registered"))
			default:
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user"))
			}
			return
		}

		user, err := users.FindByID(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user"))
			return
		}
		responses.WriteSuccess(w, userrepo.FromModel(user))
	}
}

// AdminDeleteUser removes an account.
func AdminDeleteUser(users userrepo.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if users == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user repository unavailable"))
			return
		}

		userID, appErr := pathUUID(r, "userId", "user id")
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		if err := users.Delete(r.Context(), userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type adminCreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role,omitempty"`
}

type adminUpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	Password *string `json:"password,omitempty"`
}
