package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	expirySweeperJob *ExpirySweeperJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	sweepHandler commands.SweepExpiredCommandHandler,
	claimTTL time.Duration,
	sweepSpec string,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		expirySweeperJob: NewExpirySweeperJob(sweepHandler, claimTTL, sweepSpec, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.expirySweeperJob.Start(); err != nil {
		return fmt.Errorf("failed to start expiry sweeper job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.expirySweeperJob.Stop()
}
