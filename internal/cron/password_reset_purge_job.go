package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
)

type resetPurgeRepo interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// PasswordResetPurgeJobParams configure the expired-reset-token purge job.
type PasswordResetPurgeJobParams struct {
	Logger *logger.Logger
	Resets resetPurgeRepo
}

// NewPasswordResetPurgeJob builds the job that deletes expired reset tokens.
func NewPasswordResetPurgeJob(params PasswordResetPurgeJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Resets == nil {
		return nil, fmt.Errorf("reset repository required")
	}
	return &passwordResetPurgeJob{
		logg:   params.Logger,
		resets: params.Resets,
		now:    time.Now,
	}, nil
}

type passwordResetPurgeJob struct {
	logg   *logger.Logger
	resets resetPurgeRepo
	now    func() time.Time
}

func (j *passwordResetPurgeJob) Name() string { return "password_reset_purge" }

func (j *passwordResetPurgeJob) Run(ctx context.Context) error {
	deleted, err := j.resets.DeleteExpired(ctx, j.now().UTC())
	if err != nil {
		return err
	}
	if deleted > 0 {
		j.logg.Info(j.logg.WithField(ctx, "deleted", deleted), "expired reset tokens purged")
	}
	return nil
}
