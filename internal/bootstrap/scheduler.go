package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/railbooking/railbooking/internal/domain"
	"github.com/robfig/cron/v3"
)

type Reconciler interface {
	Reconcile(ctx context.Context) ([]domain.SeatCorrection, error)
}

// NewReconcileScheduler runs reconciler on schedule (standard cron syntax
// or descriptors such as "@every 15m"). A run still in progress makes the
// next tick a no-op. The caller starts and stops the returned scheduler.
func NewReconcileScheduler(ctx context.Context, schedule string, reconciler Reconciler, logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DiscardLogger),
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	_, err := c.AddFunc(schedule, func() {
		corrections, err := reconciler.Reconcile(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "scheduled reconciliation failed", "error", err)
			return
		}
		if len(corrections) > 0 {
			logger.WarnContext(ctx, "scheduled reconciliation corrected seat counters", "trains", len(corrections))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule reconciliation %q: %w", schedule, err)
	}
	return c, nil
}
