// Package jobs provides the scheduled background tasks of the dispatch
// service, built on github.com/robfig/cron/v3. The only job today is the
// overdue delivery monitor; JobManager exists so the composition root starts
// and stops every job through one interface.
package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	overdueMonitorJob *OverdueMonitorJob
}

// NewJobManager creates a job manager with all required jobs.
func NewJobManager(
	sweepHandler commands.SweepOverdueOrdersCommandHandler,
	sweepInterval time.Duration,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		overdueMonitorJob: NewOverdueMonitorJob(sweepHandler, sweepInterval, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.overdueMonitorJob.Start(); err != nil {
		return fmt.Errorf("failed to start overdue monitor job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.overdueMonitorJob.Stop()
}
