package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/onurcolak/contact-dispatch-service/internal/dispatch"
	"github.com/onurcolak/contact-dispatch-service/internal/domain"
	"github.com/onurcolak/contact-dispatch-service/internal/jobs"
	"github.com/onurcolak/contact-dispatch-service/pkg/logger"
)

var (
	ErrSchedulerStopped = errors.New("scheduler is stopped")
	ErrJobNotActive     = errors.New("job already completed")
)

// jobRunner is the part of dispatch.Dispatcher the scheduler needs; tests
// swap in a small fake.
type jobRunner interface {
	Run(ctx context.Context, job *jobs.Record, req domain.DispatchRequest) error
}

type jobCache interface {
	CacheJobSummary(ctx context.Context, snap domain.JobSnapshot) error
}

type jobMetrics interface {
	JobQueued()
	JobStarted()
	JobCompleted(status string, wasRunning bool)
}

// Scheduler owns the lifecycle of dispatch jobs. Each submitted job gets its
// own goroutine and cancellable context; at most maxJobs of them dispatch at
// the same time, the rest stay queued until a slot frees up.
type Scheduler struct {
	runner  jobRunner
	store   *jobs.Store
	cache   jobCache
	metrics jobMetrics

	slots   *semaphore.Weighted
	maxJobs int

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
	cancels map[string]context.CancelFunc

	// Statistics
	startedAt     time.Time
	lastJobAt     time.Time
	jobsSubmitted int64
	jobsFinished  int64
	jobsFailed    int64
	messagesSent  int64
}

// NewScheduler builds a scheduler. cache and metrics may be nil.
func NewScheduler(
	runner *dispatch.Dispatcher,
	store *jobs.Store,
	cache jobCache,
	metrics jobMetrics,
	maxConcurrentJobs int,
) *Scheduler {
	return newScheduler(runner, store, cache, metrics, maxConcurrentJobs)
}

func newScheduler(runner jobRunner, store *jobs.Store, cache jobCache, metrics jobMetrics, maxJobs int) *Scheduler {
	if maxJobs <= 0 {
		maxJobs = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:     runner,
		store:      store,
		cache:      cache,
		metrics:    metrics,
		slots:      semaphore.NewWeighted(int64(maxJobs)),
		maxJobs:    maxJobs,
		baseCtx:    ctx,
		baseCancel: cancel,
		cancels:    make(map[string]context.CancelFunc),
		startedAt:  time.Now(),
	}
}

// Submit registers a queued job for req and starts it in the background.
// It never waits for the dispatch itself.
func (s *Scheduler) Submit(req domain.DispatchRequest) (*jobs.Record, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, ErrSchedulerStopped
	}

	job := jobs.NewRecord(req)
	s.store.Add(job)

	ctx, cancel := context.WithCancel(s.baseCtx)
	s.cancels[job.ID()] = cancel
	s.jobsSubmitted++
	s.lastJobAt = time.Now()
	s.wg.Add(1)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.JobQueued()
	}

	logger.Infof("Job %s queued: %d contacts, %d rules", job.ID(), len(req.Table.Rows), len(req.Rules))

	go s.run(ctx, job, req)

	return job, nil
}

func (s *Scheduler) run(ctx context.Context, job *jobs.Record, req domain.DispatchRequest) {
	defer s.wg.Done()

	if err := s.slots.Acquire(ctx, 1); err != nil {
		// A job never skips running, even when cancelled in the queue.
		if err := job.MarkRunning(); err != nil {
			logger.Errorf("Job %s: %v", job.ID(), err)
		}
		s.complete(job, fmt.Errorf("%w before start", dispatch.ErrCancelled), false)
		return
	}
	defer s.slots.Release(1)

	if err := job.MarkRunning(); err != nil {
		logger.Errorf("Job %s: %v", job.ID(), err)
		s.forget(job.ID())
		return
	}
	if s.metrics != nil {
		s.metrics.JobStarted()
	}

	logger.Infof("Job %s running", job.ID())

	s.complete(job, s.execute(ctx, job, req), true)
}

// execute runs the job and turns a panic into a job failure.
func (s *Scheduler) execute(ctx context.Context, job *jobs.Record, req domain.DispatchRequest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected error: %v", r)
		}
	}()

	return s.runner.Run(ctx, job, req)
}

func (s *Scheduler) complete(job *jobs.Record, runErr error, wasRunning bool) {
	s.forget(job.ID())

	if runErr != nil {
		if err := job.MarkFailed(runErr); err != nil {
			logger.Errorf("Job %s: %v", job.ID(), err)
		}
		logger.Warnf("Job %s failed: %v", job.ID(), runErr)
	} else {
		if err := job.MarkFinished(); err != nil {
			logger.Errorf("Job %s: %v", job.ID(), err)
		}
	}

	snap := job.Snapshot()

	s.mu.Lock()
	if snap.Status == domain.JobFinished {
		s.jobsFinished++
	} else {
		s.jobsFailed++
	}
	s.messagesSent += int64(snap.Counters.Sent)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.JobCompleted(string(snap.Status), wasRunning)
	}

	logger.Infof("Job %s %s: %d sent, %d skipped, %d errors",
		snap.ID, snap.Status, snap.Counters.Sent, snap.Counters.Skipped, snap.Counters.Errors)

	if s.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.cache.CacheJobSummary(ctx, snap); err != nil {
			logger.Warnf("Failed to cache summary of job %s: %v", snap.ID, err)
		}
	}
}

func (s *Scheduler) forget(id string) {
	s.mu.Lock()
	cancel, ok := s.cancels[id]
	delete(s.cancels, id)
	s.mu.Unlock()

	if ok {
		cancel()
	}
}

// Cancel asks a queued or running job to stop. The job notices between
// rules, between contacts or while waiting, and ends as failed.
func (s *Scheduler) Cancel(id string) error {
	s.mu.RLock()
	cancel, ok := s.cancels[id]
	s.mu.RUnlock()

	job, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if !ok || job.Status().Terminal() {
		return ErrJobNotActive
	}

	logger.Infof("Cancelling job %s", id)
	cancel()
	return nil
}

// Stop cancels every job and waits for their goroutines to return. Submit
// fails afterwards.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		logger.Warnf("Scheduler is already stopped")
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	s.baseCancel()
	s.wg.Wait()

	logger.Infof("Scheduler stopped")
	return nil
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.stopped
}

func (s *Scheduler) GetStatus() SchedulerStatus {
	var queued, running int
	for _, job := range s.store.List() {
		switch job.Status() {
		case domain.JobQueued:
			queued++
		case domain.JobRunning:
			running++
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return SchedulerStatus{
		Running:           !s.stopped,
		StartedAt:         s.startedAt,
		LastJobAt:         s.lastJobAt,
		MaxConcurrentJobs: s.maxJobs,
		QueuedJobs:        queued,
		RunningJobs:       running,
		JobsSubmitted:     s.jobsSubmitted,
		JobsFinished:      s.jobsFinished,
		JobsFailed:        s.jobsFailed,
		MessagesSent:      s.messagesSent,
	}
}

type SchedulerStatus struct {
	Running           bool      `json:"running"`
	StartedAt         time.Time `json:"startedAt"`
	LastJobAt         time.Time `json:"lastJobAt,omitempty"`
	MaxConcurrentJobs int       `json:"maxConcurrentJobs"`
	QueuedJobs        int       `json:"queuedJobs"`
	RunningJobs       int       `json:"runningJobs"`
	JobsSubmitted     int64     `json:"jobsSubmitted"`
	JobsFinished      int64     `json:"jobsFinished"`
	JobsFailed        int64     `json:"jobsFailed"`
	MessagesSent      int64     `json:"messagesSent"`
}
