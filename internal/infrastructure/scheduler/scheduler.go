package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobStatus represents the outcome of the last run of a job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is a unit of background work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobFunc adapts a function to Job
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

func (j JobFunc) Name() string                  { return j.JobName }
func (j JobFunc) Run(ctx context.Context) error { return j.Fn(ctx) }

// JobInfo is the run history of a registered job
type JobInfo struct {
	Name        string     `json:"name"`
	Schedule    string     `json:"schedule"`
	Status      JobStatus  `json:"status"`
	Runs        int        `json:"runs"`
	Failures    int        `json:"failures"`
	LastError   string     `json:"last_error,omitempty"`
	LastStarted *time.Time `json:"last_started,omitempty"`
	LastEnded   *time.Time `json:"last_ended,omitempty"`
	NextRun     *time.Time `json:"next_run,omitempty"`
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Enabled    bool
	JobTimeout time.Duration
	Location   *time.Location
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:    true,
		JobTimeout: 10 * time.Minute,
		Location:   time.UTC,
	}
}

type entry struct {
	job      Job
	schedule string
	id       cron.EntryID
	info     JobInfo
}

// Scheduler runs registered jobs on cron expressions or fixed intervals. A
// job never overlaps with itself; a panicking job is recovered and recorded
// as failed.
type Scheduler struct {
	config SchedulerConfig
	cron   *cron.Cron
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	jobs      map[string]*entry
	isRunning bool
	now       func() time.Time
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config SchedulerConfig, logger *zap.Logger) *Scheduler {
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultSchedulerConfig().JobTimeout
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	cronLogger := newCronLogger(logger)
	return &Scheduler{
		config: config,
		cron: cron.New(
			cron.WithLocation(config.Location),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
		),
		logger: logger,
		jobs:   make(map[string]*entry),
		now:    time.Now,
	}
}

// AddCron registers a job on a standard five-field cron expression or a
// descriptor such as "@hourly" or "@every 10m"
func (s *Scheduler) AddCron(expr string, job Job) error {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSchedule, expr, err)
	}
	return s.add(schedule, expr, job)
}

// AddInterval registers a job that runs every interval
func (s *Scheduler) AddInterval(interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("%w: interval %s", ErrInvalidSchedule, interval)
	}
	return s.add(cron.Every(interval), "@every "+interval.String(), job)
}

func (s *Scheduler) add(schedule cron.Schedule, expr string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrJobExists, name)
	}
	e := &entry{
		job:      job,
		schedule: expr,
		info:     JobInfo{Name: name, Schedule: expr, Status: JobStatusPending},
	}
	e.id = s.cron.Schedule(schedule, cron.FuncJob(func() { s.execute(e) }))
	s.jobs[name] = e

	s.logger.Info("Scheduled job registered",
		zap.String("job", name),
		zap.String("schedule", expr))
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.isRunning = true
	s.cron.Start()

	s.logger.Info("Scheduler started",
		zap.Int("jobs", len(s.jobs)),
		zap.Duration("job_timeout", s.config.JobTimeout))
	return nil
}

// Stop stops scheduling and cancels running jobs, waiting for them until ctx expires
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cronDone := s.cron.Stop()
	cancel()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// RunNow runs a registered job immediately in the background
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	e, ok := s.jobs[name]
	running := s.isRunning
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if !running {
		return ErrSchedulerNotRunning
	}
	go s.execute(e)
	return nil
}

// Jobs returns the run history of all jobs sorted by name
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobInfo, 0, len(s.jobs))
	for _, e := range s.jobs {
		info := e.info
		if next := s.cron.Entry(e.id).Next; !next.IsZero() {
			info.NextRun = &next
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// execute runs one job with the configured timeout and records the outcome
func (s *Scheduler) execute(e *entry) {
	s.mu.Lock()
	if !s.isRunning || e.info.Status == JobStatusRunning {
		s.mu.Unlock()
		return
	}
	parent := s.ctx
	started := s.now()
	e.info.Status = JobStatusRunning
	e.info.LastStarted = &started
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(parent, s.config.JobTimeout)
	defer cancel()

	err := s.runRecovered(ctx, e.job)

	ended := s.now()
	s.mu.Lock()
	e.info.Runs++
	e.info.LastEnded = &ended
	if err != nil {
		e.info.Status = JobStatusFailed
		e.info.Failures++
		e.info.LastError = err.Error()
	} else {
		e.info.Status = JobStatusSuccess
		e.info.LastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Job failed",
			zap.String("job", e.job.Name()),
			zap.Duration("duration", ended.Sub(started)),
			zap.Error(err))
		return
	}
	s.logger.Debug("Job completed",
		zap.String("job", e.job.Name()),
		zap.Duration("duration", ended.Sub(started)))
}

func (s *Scheduler) runRecovered(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name(), r)
		}
	}()
	return job.Run(ctx)
}

// cronLogger routes robfig/cron logging to zap
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func newCronLogger(logger *zap.Logger) cron.Logger {
	return cronLogger{sugar: logger.Named("cron").Sugar()}
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
