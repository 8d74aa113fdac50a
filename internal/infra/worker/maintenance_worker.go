package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/gogo-imperial/gogo-web/internal/entity"
	"github.com/gogo-imperial/gogo-web/internal/infra/metrics"
)

// Sweeper drops stale rate-limit windows. Only the in-process store needs it.
type Sweeper interface {
	Sweep(now time.Time) int
}

// MaintenanceWorker purges expired admin sessions and stale rate-limit
// windows on a cron schedule.
type MaintenanceWorker struct {
	sessions entity.SessionRepositoryInterface
	sweeper  Sweeper
	schedule string
	logger   *zap.Logger
	now      func() time.Time

	cron *cron.Cron
}

func NewMaintenanceWorker(sessions entity.SessionRepositoryInterface, sweeper Sweeper, schedule string, logger *zap.Logger) *MaintenanceWorker {
	if schedule == "" {
		schedule = "@every 10m"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaintenanceWorker{
		sessions: sessions,
		sweeper:  sweeper,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
		cron:     cron.New(),
	}
}

// Start runs one pass immediately, then schedules the rest. It returns once
// the schedule is registered; Stop ends it.
func (w *MaintenanceWorker) Start(ctx context.Context) error {
	if _, err := w.cron.AddFunc(w.schedule, func() { w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid maintenance schedule %q: %w", w.schedule, err)
	}
	w.RunOnce(ctx)
	w.cron.Start()
	w.logger.Info("maintenance worker started", zap.String("schedule", w.schedule))
	return nil
}

// Stop waits for a running pass to finish or ctx to expire.
func (w *MaintenanceWorker) Stop(ctx context.Context) {
	select {
	case <-w.cron.Stop().Done():
	case <-ctx.Done():
	}
	w.logger.Info("maintenance worker stopped")
}

func (w *MaintenanceWorker) RunOnce(ctx context.Context) {
	now := w.now().UTC()

	if w.sessions != nil {
		removed, err := w.sessions.DeleteExpired(ctx, now)
		if err != nil {
			w.logger.Error("failed to purge expired sessions", zap.Error(err))
		} else {
			metrics.RecordMaintenance("sessions", removed)
			if removed > 0 {
				w.logger.Info("expired sessions purged", zap.Int64("removed", removed))
			}
		}
	}

	if w.sweeper != nil {
		removed := w.sweeper.Sweep(now)
		metrics.RecordMaintenance("rate_limit", int64(removed))
		if removed > 0 {
			w.logger.Debug("stale rate-limit windows swept", zap.Int("removed", removed))
		}
	}
}
