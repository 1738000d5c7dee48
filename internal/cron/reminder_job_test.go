package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
)

type fakeDispatcher struct {
	count int
	err   error
	calls int
}

func (f *fakeDispatcher) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	f.calls++
	return f.count, f.err
}

func TestReminderJobDispatches(t *testing.T) {
	dispatcher := &fakeDispatcher{count: 3}
	job, err := NewReminderJob(ReminderJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "cron-test"}),
		Reminders: dispatcher,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if dispatcher.calls != 1 {
		t.Fatalf("expected one dispatch call, got %d", dispatcher.calls)
	}
}

func TestReminderJobPropagatesError(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.New("db down")}
	job, err := NewReminderJob(ReminderJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "cron-test"}),
		Reminders: dispatcher,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakePurgeRepo struct {
	deleted int64
	err     error
}

func (f *fakePurgeRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return f.deleted, f.err
}

func TestPasswordResetPurgeJob(t *testing.T) {
	job, err := NewPasswordResetPurgeJob(PasswordResetPurgeJobParams{
		Logger: logger.New(logger.Options{ServiceName: "cron-test"}),
		Resets: &fakePurgeRepo{deleted: 2},
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
}
