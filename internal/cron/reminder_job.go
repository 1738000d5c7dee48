package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
)

type reminderDispatcher interface {
	DispatchDue(ctx context.Context, now time.Time) (int, error)
}

// ReminderJobParams configure the due-reminder dispatch job.
type ReminderJobParams struct {
	Logger    *logger.Logger
	Reminders reminderDispatcher
}

// NewReminderJob builds the job that sweeps due gift reminders.
func NewReminderJob(params ReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reminders == nil {
		return nil, fmt.Errorf("reminders service required")
	}
	return &reminderJob{
		logg:      params.Logger,
		reminders: params.Reminders,
		now:       time.Now,
	}, nil
}

type reminderJob struct {
	logg      *logger.Logger
	reminders reminderDispatcher
	now       func() time.Time
}

func (j *reminderJob) Name() string { return "reminder_dispatch" }

func (j *reminderJob) Run(ctx context.Context) error {
	count, err := j.reminders.DispatchDue(ctx, j.now().UTC())
	if err != nil {
		return err
	}
	if count > 0 {
		j.logg.Info(j.logg.WithField(ctx, "dispatched", count), "reminders dispatched")
	}
	return nil
}
