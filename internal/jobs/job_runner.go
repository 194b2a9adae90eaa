package jobs

import (
	"context"
	"fmt"
	"time"

	"driverent-backend/internal/config"
	"driverent-backend/internal/logger"
	"driverent-backend/internal/metrics"
	"driverent-backend/internal/repository"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	tx      repository.Transactor
	metrics *metrics.Metrics
	config  *config.Config
	now     func() time.Time
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(tx repository.Transactor, m *metrics.Metrics, cfg *config.Config) *JobRunner {
	return &JobRunner{
		tx:      tx,
		metrics: m,
		config:  cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// today is the current calendar day in UTC, formatted as yyyy-mm-dd.
func (jr *JobRunner) today() string {
	return jr.now().UTC().Format("2006-01-02")
}

// runWithRecovery wraps job execution with panic recovery and records the
// outcome of every run.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
		jr.metrics.IncJobRun(jobName, err)
	}()

	logger.Info("Starting job", "job", jobName)
	err = jobFunc(context.Background())
	if err != nil {
		logger.Error("Job failed", "job", jobName, "error", err)
		return
	}
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution). Finished
// rentals release their vehicles before due rentals claim them.
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.FinishRentals()
	jr.StartSignedRentals()
}
