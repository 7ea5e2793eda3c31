package jobs

import (
	"context"
	"fmt"
	"time"

	"alugaai-backend/internal/config"
	"alugaai-backend/internal/logger"
	"alugaai-backend/internal/metrics"
	"alugaai-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	rentals service.RentalService
	config  *config.Config
	metrics *metrics.CronJobMetrics
	now     func() time.Time
	timeout time.Duration
}

// Option customizes a JobRunner.
type Option func(*JobRunner)

// WithClock overrides the time source used to decide which rentals are due.
func WithClock(now func() time.Time) Option {
	return func(jr *JobRunner) { jr.now = now }
}

// WithTimeout bounds a single job run. Zero means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(jr *JobRunner) { jr.timeout = d }
}

// NewJobRunner creates a new job runner with all dependencies. A nil metrics
// recorder disables job metrics.
func NewJobRunner(rentals service.RentalService, cfg *config.Config, m *metrics.CronJobMetrics, opts ...Option) *JobRunner {
	jr := &JobRunner{
		rentals: rentals,
		config:  cfg,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
		timeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(jr)
	}
	return jr
}

// Config returns the configuration the runner was built with.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery, logging and metrics
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) (int, error)) (n int, err error) {
	log := logger.WithService("jobs").With("job", jobName)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
		jr.metrics.ObserveDuration(jobName, time.Since(start))
		if err != nil {
			jr.metrics.IncFailure(jobName)
			return
		}
		jr.metrics.IncSuccess(jobName)
		jr.metrics.AddTransitioned(jobName, n)
	}()

	ctx := context.Background()
	if jr.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, jr.timeout)
		defer cancel()
	}

	log.Info("Starting job")
	n, err = jobFunc(ctx)
	if err != nil {
		log.Error("Job failed", "transitioned", n, "error", err)
		return n, err
	}
	log.Info("Job completed", "transitioned", n, "elapsed", time.Since(start))
	return n, nil
}

// RunAll runs every rental job once, activation first (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ActivateStartedRentals()
	jr.CompleteEndedRentals()
}
