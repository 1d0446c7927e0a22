// Package jobs provides scheduled background tasks for the dispatch system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for the dispatch service.
//
// # Available Jobs
//
// 1. ExpirySweeperJob - Periodically cancels published deliveries whose claim window has expired
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(sweepHandler, claimTTL, sweepSpec, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The sweeper's cron spec is configuration-driven (seconds-granularity specs
// are supported); a typical deployment runs it every minute. The claim TTL is
// passed per run, so a config reload changes the window without restarting
// the scheduler.
//
// # Error Handling
//
// Sweep runs swallow per-record races (a courier claiming while the sweeper
// cancels); only whole-run failures are logged as errors. A failed job start
// stops any already running jobs.
package jobs
