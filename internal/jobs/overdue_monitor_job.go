package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// OverdueMonitorJob periodically sweeps for deliveries whose estimated
// arrival has passed without a terminal status, publishing an overdue alert
// per order. The sweep never mutates the flagged orders.
type OverdueMonitorJob struct {
	handler  commands.SweepOverdueOrdersCommandHandler
	interval time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewOverdueMonitorJob creates the overdue sweep job. interval must be at
// least a minute; sub-minute sweeps add load without catching anything
// sooner, since ETAs carry minute granularity.
func NewOverdueMonitorJob(
	handler commands.SweepOverdueOrdersCommandHandler,
	interval time.Duration,
	logger *slog.Logger,
) *OverdueMonitorJob {
	if interval < time.Minute {
		interval = time.Minute
	}

	return &OverdueMonitorJob{
		handler:  handler,
		interval: interval,
		cron:     cron.New(),
		logger:   logger.With("component", "overdue_monitor_job"),
	}
}

// Start begins the periodic sweep.
func (j *OverdueMonitorJob) Start() error {
	spec := fmt.Sprintf("@every %s", j.interval)

	_, err := j.cron.AddFunc(spec, func() {
		ctx := context.Background()

		cmd, cmdErr := commands.NewSweepOverdueOrdersCommand(time.Now().UTC())
		if cmdErr != nil {
			j.logger.ErrorContext(ctx, "Failed to build overdue sweep command", "error", cmdErr)
			return
		}

		flagged, sweepErr := j.handler.Handle(ctx, cmd)
		if sweepErr != nil {
			j.logger.ErrorContext(ctx, "Overdue sweep failed", "error", sweepErr)
			return
		}

		if flagged > 0 {
			j.logger.InfoContext(ctx, "Overdue sweep completed", "flagged", flagged)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Overdue monitor job started", "interval", j.interval)
	return nil
}

// Stop stops the sweep job.
func (j *OverdueMonitorJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Overdue monitor job stopped")
}
