package controllers

import (
	"net/http"
	"time"

	"github.com/keepsakeshop/keepsake-backend/api/responses"
	"github.com/keepsakeshop/keepsake-backend/api/validators"
	remindersvc "github.com/keepsakeshop/keepsake-backend/internal/reminders"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
)

// ReminderCreate registers a gift date to be nudged about ahead of time.
func ReminderCreate(svc remindersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reminder service unavailable"))
			return
		}

		userID, appErr := contextUserID(r)
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		var body createReminderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reminder, err := svc.Create(r.Context(), remindersvc.CreateInput{
			UserID:           userID,
			Title:            body.Title,
			Description:      body.Description,
			Date:             body.Date,
			NotifyBeforeDays: body.NotifyBeforeDays,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, remindersvc.FromModel(reminder))
	}
}

func RemindersList(svc remindersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reminder service unavailable"))
			return
		}

		userID, appErr := contextUserID(r)
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		reminders, err := svc.ListMine(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"reminders": remindersvc.FromModels(reminders)})
	}
}

func ReminderUpdate(svc remindersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reminder service unavailable"))
			return
		}

		userID, appErr := contextUserID(r)
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		reminderID, appErr := pathUUID(r, "reminderId", "reminder id")
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		var body updateReminderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reminder, err := svc.Update(r.Context(), reminderID, userID, remindersvc.UpdateInput{
			Title:            body.Title,
			Description:      body.Description,
			Date:             body.Date,
			NotifyBeforeDays: body.NotifyBeforeDays,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, remindersvc.FromModel(reminder))
	}
}

func ReminderDelete(svc remindersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reminder service unavailable"))
			return
		}

		userID, appErr := contextUserID(r)
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		reminderID, appErr := pathUUID(r, "reminderId", "reminder id")
		if appErr != nil {
			responses.WriteError(r.Context(), logg, w, appErr)
			return
		}

		if err := svc.Delete(r.Context(), reminderID, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type createReminderRequest struct {
	Title            string    `json:"title" validate:"required"`
	Description      *string   `json:"description,omitempty"`
	Date             time.Time `json:"date" validate:"required"`
	NotifyBeforeDays int       `json:"notify_before_days,omitempty" validate:"omitempty,min=1,max=365"`
}

type updateReminderRequest struct {
	Title            *string    `json:"title,omitempty"`
	Description      *string    `json:"description,omitempty"`
	Date             *time.Time `json:"date,omitempty"`
	NotifyBeforeDays *int       `json:"notify_before_days,omitempty" validate:"omitempty,min=1,max=365"`
}
