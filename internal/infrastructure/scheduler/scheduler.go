package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/welth/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobType names a kind of background job
type JobType string

const (
	JobTypeBudgetAlert           JobType = "budget_alert"
	JobTypeRecurringTransactions JobType = "recurring_transactions"
)

// Job is one run of a background job. ScheduledFor is the instant the
// job evaluates, carried across retries.
type Job struct {
	ID           uuid.UUID
	Type         JobType
	ScheduledFor time.Time
	Status       JobStatus
	Error        string
	StartedAt    *time.Time
	CompletedAt  *time.Time
	RetryCount   int
	MaxRetries   int
}

// NewJob creates a pending job
func NewJob(jobType JobType, scheduledFor time.Time, maxRetries int) *Job {
	return &Job{
		ID:           uuid.New(),
		Type:         jobType,
		ScheduledFor: scheduledFor,
		Status:       JobStatusPending,
		MaxRetries:   maxRetries,
	}
}

// Start marks the job as running
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// PrepareRetry resets a failed job for another attempt
func (j *Job) PrepareRetry() {
	j.RetryCount++
	j.Status = JobStatusPending
	j.Error = ""
}

// JobExecutor runs jobs of one type
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// JobExecutorFunc adapts a function to JobExecutor
type JobExecutorFunc func(ctx context.Context, job *Job) error

// Execute calls f(ctx, job)
func (f JobExecutorFunc) Execute(ctx context.Context, job *Job) error {
	return f(ctx, job)
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Workers       int
	QueueSize     int
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Workers:       2,
		QueueSize:     16,
		JobTimeout:    10 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    time.Minute,
	}
}

// Validate checks the configuration
func (c SchedulerConfig) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue size must be positive", ErrInvalidConfig)
	}
	if c.JobTimeout <= 0 {
		return fmt.Errorf("%w: job timeout must be positive", ErrInvalidConfig)
	}
	if c.RetryAttempts < 0 || c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry settings cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// Scheduler runs submitted jobs on a fixed worker pool. At most one job
// per type is queued or running at a time.
type Scheduler struct {
	config    SchedulerConfig
	executors map[JobType]JobExecutor
	metrics   *telemetry.FinanceMetrics
	logger    *zap.Logger

	jobs      chan *Job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	active    map[JobType]bool
	retries   map[uuid.UUID]*time.Timer
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config SchedulerConfig, logger *zap.Logger) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		config:    config,
		executors: make(map[JobType]JobExecutor),
		logger:    logger,
		jobs:      make(chan *Job, config.QueueSize),
		active:    make(map[JobType]bool),
		retries:   make(map[uuid.UUID]*time.Timer),
	}, nil
}

// SetMetrics sets the business metrics recorder
func (s *Scheduler) SetMetrics(metrics *telemetry.FinanceMetrics) {
	s.metrics = metrics
}

// RegisterExecutor sets the executor for a job type. Call before Start.
func (s *Scheduler) RegisterExecutor(jobType JobType, executor JobExecutor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executors[jobType] = executor
}

// Start starts the worker pool
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true
	ctx, s.cancel = context.WithCancel(ctx)

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Job scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Int("queue_size", s.config.QueueSize),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs and waits for the workers to exit
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	for id, timer := range s.retries {
		timer.Stop()
		delete(s.retries, id)
	}
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Job scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Job scheduler stop timed out")
		return ctx.Err()
	}
}

// SubmitJob queues a job without blocking
func (s *Scheduler) SubmitJob(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return ErrSchedulerNotRunning
	}
	if _, ok := s.executors[job.Type]; !ok {
		return fmt.Errorf("%w: %s", ErrNoExecutor, job.Type)
	}
	if s.active[job.Type] {
		return ErrJobAlreadyQueued
	}

	select {
	case s.jobs <- job:
		s.active[job.Type] = true
		s.logger.Debug("Job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// Submit creates and queues a job of jobType for scheduledFor
func (s *Scheduler) Submit(jobType JobType, scheduledFor time.Time) (*Job, error) {
	job := NewJob(jobType, scheduledFor, s.config.RetryAttempts)
	if err := s.SubmitJob(job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	s.mu.Lock()
	executor := s.executors[job.Type]
	s.mu.Unlock()

	job.Start()
	log := s.logger.With(
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
	)
	log.Info("Processing job", zap.Int("retry_count", job.RetryCount))

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	err := s.execute(jobCtx, executor, job)
	cancel()

	duration := time.Since(*job.StartedAt)
	if err == nil {
		job.Complete()
		s.metrics.RecordJobDuration(ctx, string(job.Type), duration, "success")
		log.Info("Job completed successfully", zap.Duration("duration", duration))
		s.release(job.Type)
		return
	}

	job.Fail(err.Error())
	s.metrics.RecordJobDuration(ctx, string(job.Type), duration, "failure")
	log.Error("Job failed", zap.Duration("duration", duration), zap.Error(err))

	if !job.ShouldRetry() || ctx.Err() != nil {
		s.release(job.Type)
		return
	}

	job.PrepareRetry()
	log.Info("Job scheduled for retry",
		zap.Int("retry_count", job.RetryCount),
		zap.Int("max_retries", job.MaxRetries),
		zap.Duration("delay", s.config.RetryDelay),
	)
	s.scheduleRetry(job)
}

// execute runs the executor, turning a panic into an error
func (s *Scheduler) execute(ctx context.Context, executor JobExecutor, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	if executor == nil {
		return fmt.Errorf("%w: %s", ErrNoExecutor, job.Type)
	}
	return executor.Execute(ctx, job)
}

// scheduleRetry requeues job after the retry delay. The job keeps its
// type slot while it waits.
func (s *Scheduler) scheduleRetry(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		s.active[job.Type] = false
		return
	}

	s.retries[job.ID] = time.AfterFunc(s.config.RetryDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.retries, job.ID)
		if !s.isRunning {
			s.active[job.Type] = false
			return
		}
		select {
		case s.jobs <- job:
		default:
			s.active[job.Type] = false
			s.logger.Warn("Failed to re-queue job for retry", zap.String("job_id", job.ID.String()))
		}
	})
}

func (s *Scheduler) release(jobType JobType) {
	s.mu.Lock()
	s.active[jobType] = false
	s.mu.Unlock()
}

// IsRunning reports whether the worker pool is running
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
