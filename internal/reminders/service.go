package reminders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
	"github.com/keepsakeshop/keepsake-backend/pkg/outbox"
)

const (
	defaultNotifyBeforeDays = 7
	dispatchBatchSize       = 100
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(tx *gorm.DB, aggregate enums.OutboxAggregateType, aggregateID uuid.UUID, eventType enums.OutboxEventType, actor *outbox.ActorRef, data any) error
}

// ReminderDueEvent is emitted once per reminder when its notify window opens.
type ReminderDueEvent struct {
	ReminderID uuid.UUID `json:"reminder_id"`
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	Title      string    `json:"title"`
	Date       time.Time `json:"date"`
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxEmitter
	logg   *logger.Logger
}

// NewService builds a reminders service.
func NewService(repo Repository, tx txRunner, emitter outboxEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reminders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, outbox: emitter, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Reminder, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if input.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date required")
	}
	notifyBefore := input.NotifyBeforeDays
	if notifyBefore <= 0 {
		notifyBefore = defaultNotifyBeforeDays
	}

	reminder := &models.Reminder{
		UserID:           input.UserID,
		Title:            strings.TrimSpace(input.Title),
		Description:      input.Description,
		Date:             input.Date,
		NotifyBeforeDays: notifyBefore,
		NotifyAt:         notifyAt(input.Date, notifyBefore),
	}
	if _, err := s.repo.Create(ctx, reminder); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reminder")
	}
	return reminder, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Reminder, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reminders")
	}
	return rows, nil
}

func (s *service) Update(ctx context.Context, id, userID uuid.UUID, input UpdateInput) (*models.Reminder, error) {
	reminder, err := s.findOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
		}
		updates["title"] = strings.TrimSpace(*input.Title)
		reminder.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
		reminder.Description = input.Description
	}
	if input.Date != nil {
		if input.Date.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "date required")
		}
		reminder.Date = *input.Date
		updates["date"] = *input.Date
	}
	if input.NotifyBeforeDays != nil {
		if *input.NotifyBeforeDays <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "notifyBeforeDays must be positive")
		}
		reminder.NotifyBeforeDays = *input.NotifyBeforeDays
		updates["notify_before_days"] = *input.NotifyBeforeDays
	}
	if input.Date != nil || input.NotifyBeforeDays != nil {
		reminder.NotifyAt = notifyAt(reminder.Date, reminder.NotifyBeforeDays)
		updates["notify_at"] = reminder.NotifyAt
		// Moving the schedule re-arms a reminder that already fired.
		reminder.NotifiedAt = nil
		updates["notified_at"] = nil
	}
	if len(updates) == 0 {
		return reminder, nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reminder")
	}
	return reminder, nil
}

func (s *service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.findOwned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete reminder")
	}
	return nil
}

// DispatchDue emits a due event for every reminder whose notify window has
// opened and which has not been dispatched yet. Returns the dispatch count
// alongside any per-reminder failures; one bad reminder does not stop the
// sweep.
func (s *service) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.FindDue(ctx, now, dispatchBatchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find due reminders")
	}

	var errs []error
	dispatched := 0
	for _, reminder := range due {
		reminder := reminder
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			marked, err := s.repo.WithTx(tx).MarkNotified(ctx, reminder.ID, now)
			if err != nil {
				return err
			}
			if !marked {
				return nil
			}
			email := ""
			if reminder.User != nil {
				email = reminder.User.Email
			}
			if err := s.outbox.Emit(tx, enums.AggregateReminder, reminder.ID, enums.EventReminderDue, nil, ReminderDueEvent{
				ReminderID: reminder.ID,
				UserID:     reminder.UserID,
				Email:      email,
				Title:      reminder.Title,
				Date:       reminder.Date,
			}); err != nil {
				return err
			}
			dispatched++
			return nil
		})
		if err != nil {
			s.logg.Error(ctx, "reminder dispatch failed", err)
			errs = append(errs, fmt.Errorf("reminder %s: %w", reminder.ID, err))
			continue
		}
	}
	return dispatched, multierr.Combine(errs...)
}

func (s *service) findOwned(ctx context.Context, id, userID uuid.UUID) (*models.Reminder, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	reminder, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reminder not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reminder")
	}
	if reminder.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "reminder belongs to another user")
	}
	return reminder, nil
}

func notifyAt(date time.Time, beforeDays int) time.Time {
	return date.AddDate(0, 0, -beforeDays)
}
