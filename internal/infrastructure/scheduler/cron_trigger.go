package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Default cron specs
const (
	DefaultBudgetAlertSpec  = "0 */6 * * *"
	DefaultRecurringTxnSpec = "0 0 * * *"
)

// CronTrigger submits jobs to the scheduler on cron specs
type CronTrigger struct {
	cron      *cron.Cron
	scheduler *Scheduler
	location  *time.Location
	logger    *zap.Logger

	mu        sync.Mutex
	isRunning bool
	entries   map[JobType]cron.EntryID
}

// NewCronTrigger creates a cron trigger evaluating specs in loc (nil means UTC)
func NewCronTrigger(scheduler *Scheduler, loc *time.Location, logger *zap.Logger) *CronTrigger {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
	return &CronTrigger{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger)),
		),
		scheduler: scheduler,
		location:  loc,
		logger:    logger,
		entries:   make(map[JobType]cron.EntryID),
	}
}

// Schedule registers jobType to be submitted on spec. Each type can be
// scheduled once.
func (c *CronTrigger) Schedule(spec string, jobType JobType) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[jobType]; ok {
		return fmt.Errorf("job type %s is already scheduled", jobType)
	}
	id, err := c.cron.AddFunc(spec, func() { c.Fire(jobType) })
	if err != nil {
		return fmt.Errorf("invalid cron spec %q for %s: %w", spec, jobType, err)
	}
	c.entries[jobType] = id
	return nil
}

// Fire submits a job of jobType stamped with the current time
func (c *CronTrigger) Fire(jobType JobType) {
	now := time.Now().In(c.location)
	job, err := c.scheduler.Submit(jobType, now)
	if err != nil {
		if errors.Is(err, ErrJobAlreadyQueued) {
			c.logger.Info("Skipping trigger, previous run still active", zap.String("job_type", string(jobType)))
			return
		}
		c.logger.Error("Failed to submit scheduled job", zap.String("job_type", string(jobType)), zap.Error(err))
		return
	}
	c.logger.Info("Scheduled job submitted",
		zap.String("job_type", string(jobType)),
		zap.String("job_id", job.ID.String()),
		zap.Time("scheduled_for", now),
	)
}

// NextRun returns the next activation time of jobType, or zero when unscheduled
func (c *CronTrigger) NextRun(jobType JobType) time.Time {
	c.mu.Lock()
	id, ok := c.entries[jobType]
	c.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return c.cron.Entry(id).Next
}

// Start starts the cron loop
func (c *CronTrigger) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isRunning {
		return
	}
	c.isRunning = true
	c.cron.Start()

	for jobType, id := range c.entries {
		c.logger.Info("Cron job registered",
			zap.String("job_type", string(jobType)),
			zap.Time("next_run", c.cron.Entry(id).Next),
		)
	}
}

// Stop stops the cron loop and waits for in-flight triggers
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	select {
	case <-c.cron.Stop().Done():
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
