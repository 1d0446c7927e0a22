package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// ExpirySweeperJob periodically cancels published deliveries that outlived
// the claim window. Each run is one SweepExpiredCommand; skipped and
// conflicting records are handled inside the handler, so a run never fails
// because a single record raced a claim.
type ExpirySweeperJob struct {
	handler  commands.SweepExpiredCommandHandler
	claimTTL time.Duration
	spec     string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewExpirySweeperJob creates a sweeper running on the given cron spec,
// cancelling publications older than claimTTL.
func NewExpirySweeperJob(
	handler commands.SweepExpiredCommandHandler,
	claimTTL time.Duration,
	spec string,
	logger *slog.Logger,
) *ExpirySweeperJob {
	return &ExpirySweeperJob{
		handler:  handler,
		claimTTL: claimTTL,
		spec:     spec,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "expiry_sweeper_job"),
	}
}

// Start begins the scheduled sweep.
func (j *ExpirySweeperJob) Start() error {
	_, err := j.cron.AddFunc(j.spec, func() {
		ctx := context.Background()

		cmd, err := commands.NewSweepExpiredCommand(j.claimTTL)
		if err != nil {
			j.logger.ErrorContext(ctx, "Expiry sweep misconfigured", "error", err)
			return
		}

		swept, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Expiry sweep failed", "error", err)
			return
		}

		if swept > 0 {
			j.logger.InfoContext(ctx, "Expiry sweep cancelled stale publications", "count", swept)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Expiry sweeper job started",
		"spec", j.spec, "claimTTL", j.claimTTL.String())
	return nil
}

// Stop stops the sweeper.
func (j *ExpirySweeperJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Expiry sweeper job stopped")
}
