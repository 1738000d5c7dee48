package reminders

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
	"github.com/keepsakeshop/keepsake-backend/pkg/outbox"
)

type stubTxRunner struct{}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type emittedEvent struct {
	aggregateID uuid.UUID
	eventType   enums.OutboxEventType
	data        any
}

type stubEmitter struct {
	events []emittedEvent
}

func (s *stubEmitter) Emit(tx *gorm.DB, aggregate enums.OutboxAggregateType, aggregateID uuid.UUID, eventType enums.OutboxEventType, actor *outbox.ActorRef, data any) error {
	s.events = append(s.events, emittedEvent{aggregateID: aggregateID, eventType: eventType, data: data})
	return nil
}

type stubRemindersRepo struct {
	reminders map[uuid.UUID]*models.Reminder
}

func newStubRemindersRepo() *stubRemindersRepo {
	return &stubRemindersRepo{reminders: map[uuid.UUID]*models.Reminder{}}
}

func (s *stubRemindersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRemindersRepo) Create(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error) {
	reminder.ID = uuid.New()
	stored := *reminder
	s.reminders[reminder.ID] = &stored
	return reminder, nil
}

func (s *stubRemindersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Reminder, error) {
	if stored, ok := s.reminders[id]; ok {
		copied := *stored
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRemindersRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Reminder, error) {
	var rows []models.Reminder
	for _, reminder := range s.reminders {
		if reminder.UserID == userID {
			rows = append(rows, *reminder)
		}
	}
	return rows, nil
}

func (s *stubRemindersRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	stored, ok := s.reminders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["notify_at"]; ok {
		stored.NotifyAt = v.(time.Time)
	}
	if v, ok := updates["title"]; ok {
		stored.Title = v.(string)
	}
	if _, ok := updates["notified_at"]; ok {
		stored.NotifiedAt = nil
	}
	return nil
}

func (s *stubRemindersRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.reminders, id)
	return nil
}

func (s *stubRemindersRepo) FindDue(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error) {
	var rows []models.Reminder
	for _, reminder := range s.reminders {
		if !reminder.NotifyAt.After(now) && reminder.NotifiedAt == nil {
			rows = append(rows, *reminder)
		}
		if len(rows) == limit {
			break
		}
	}
	return rows, nil
}

func (s *stubRemindersRepo) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	stored, ok := s.reminders[id]
	if !ok || stored.NotifiedAt != nil {
		return false, nil
	}
	stamp := at
	stored.NotifiedAt = &stamp
	return true, nil
}

type fixture struct {
	svc     Service
	repo    *stubRemindersRepo
	emitter *stubEmitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newStubRemindersRepo()
	emitter := &stubEmitter{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	svc, err := NewService(repo, &stubTxRunner{}, emitter, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &fixture{svc: svc, repo: repo, emitter: emitter}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}

func TestCreateComputesNotifyAt(t *testing.T) {
	f := newFixture(t)
	date := time.Date(2026, time.December, 24, 0, 0, 0, 0, time.UTC)

	reminder, err := f.svc.Create(context.Background(), CreateInput{
		UserID:           uuid.New(),
		Title:            "Mum's birthday",
		Date:             date,
		NotifyBeforeDays: 10,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	want := time.Date(2026, time.December, 14, 0, 0, 0, 0, time.UTC)
	if !reminder.NotifyAt.Equal(want) {
		t.Fatalf("expected notify at %v, got %v", want, reminder.NotifyAt)
	}
}

func TestCreateDefaultsNotifyBeforeDays(t *testing.T) {
	f := newFixture(t)
	date := time.Date(2026, time.December, 24, 0, 0, 0, 0, time.UTC)

	reminder, err := f.svc.Create(context.Background(), CreateInput{
		UserID: uuid.New(),
		Title:  "Anniversary",
		Date:   date,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if reminder.NotifyBeforeDays != defaultNotifyBeforeDays {
		t.Fatalf("expected default lead time, got %d", reminder.NotifyBeforeDays)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateInput{
		UserID: uuid.New(),
		Title:  "  ",
		Date:   time.Now().AddDate(0, 1, 0),
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateForeignReminderFailsForbidden(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	reminder, err := f.svc.Create(context.Background(), CreateInput{
		UserID: owner,
		Title:  "Graduation",
		Date:   time.Now().AddDate(0, 2, 0),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	title := "Hijacked"
	_, err = f.svc.Update(context.Background(), reminder.ID, uuid.New(), UpdateInput{Title: &title})
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestUpdateScheduleReArmsFiredReminder(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	reminder, err := f.svc.Create(context.Background(), CreateInput{
		UserID: userID,
		Title:  "Wedding",
		Date:   time.Now().AddDate(0, 0, 3),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	fired := time.Now()
	f.repo.reminders[reminder.ID].NotifiedAt = &fired

	newDate := time.Now().AddDate(0, 3, 0)
	if _, err := f.svc.Update(context.Background(), reminder.ID, userID, UpdateInput{Date: &newDate}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if f.repo.reminders[reminder.ID].NotifiedAt != nil {
		t.Fatal("expected rescheduled reminder to be eligible for dispatch again")
	}
}

func TestDispatchDueEmitsOncePerReminder(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	userID := uuid.New()
	reminder, err := f.svc.Create(context.Background(), CreateInput{
		UserID:           userID,
		Title:            "Dad's birthday",
		Date:             now.AddDate(0, 0, 2),
		NotifyBeforeDays: 7,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	count, err := f.svc.DispatchDue(context.Background(), now)
	if err != nil {
		t.Fatalf("DispatchDue: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 dispatch, got %d", count)
	}
	if len(f.emitter.events) != 1 || f.emitter.events[0].eventType != enums.EventReminderDue {
		t.Fatalf("expected one reminder_due event, got %+v", f.emitter.events)
	}
	if f.emitter.events[0].aggregateID != reminder.ID {
		t.Fatal("expected event to reference the dispatched reminder")
	}

	// Second sweep must not re-dispatch.
	count, err = f.svc.DispatchDue(context.Background(), now.Add(time.Minute))
	if err != nil {
		t.Fatalf("DispatchDue second: %v", err)
	}
	if count != 0 || len(f.emitter.events) != 1 {
		t.Fatalf("expected no re-dispatch, got count=%d events=%d", count, len(f.emitter.events))
	}
}

func TestDispatchDueSkipsFutureReminders(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	if _, err := f.svc.Create(context.Background(), CreateInput{
		UserID:           uuid.New(),
		Title:            "Far away",
		Date:             now.AddDate(1, 0, 0),
		NotifyBeforeDays: 7,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	count, err := f.svc.DispatchDue(context.Background(), now)
	if err != nil {
		t.Fatalf("DispatchDue: %v", err)
	}
	if count != 0 || len(f.emitter.events) != 0 {
		t.Fatalf("expected nothing due, got count=%d", count)
	}
}

func TestDeleteRemovesOwnReminder(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	reminder, err := f.svc.Create(context.Background(), CreateInput{
		UserID: userID,
		Title:  "New year gift",
		Date:   time.Now().AddDate(0, 4, 0),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := f.svc.Delete(context.Background(), reminder.ID, userID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := f.repo.reminders[reminder.ID]; ok {
		t.Fatal("expected reminder removed")
	}
}
