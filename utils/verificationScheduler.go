package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PendingResumer starts pollers for pending certificates that have none.
type PendingResumer interface {
	ResumePending(ctx context.Context) (int, error)
}

func logScheduler(msg string, fields ...zap.Field) {
	zap.L().Info("[VERIFICATION-SCHEDULER] "+msg, fields...)
}

// SweepPending runs one resume pass.
func SweepPending(certs PendingResumer) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	started, err := certs.ResumePending(ctx)
	if err != nil {
		zap.L().Error("[VERIFICATION-SCHEDULER] Error resuming pending certificates", zap.Error(err))
		return
	}
	if started > 0 {
		logScheduler("Resumed polling", zap.Int("certificates", started))
	}
}

// InitializeVerificationScheduler sweeps once immediately and then on spec.
func InitializeVerificationScheduler(spec string, certs PendingResumer) (*cron.Cron, error) {
	logScheduler("Initializing verification scheduler...")

	c := cron.New()
	if _, err := c.AddFunc(spec, func() { SweepPending(certs) }); err != nil {
		return nil, fmt.Errorf("invalid SWEEP_SCHEDULE %q: %w", spec, err)
	}

	SweepPending(certs)
	c.Start()

	logScheduler("Verification scheduler started", zap.String("schedule", spec))
	return c, nil
}
