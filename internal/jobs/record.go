// Package jobs keeps the in-memory, pollable state of dispatch jobs.
package jobs

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/onurcolak/contact-dispatch-service/internal/domain"
	"github.com/onurcolak/contact-dispatch-service/pkg/logger"
)

var ErrInvalidTransition = errors.New("invalid job status transition")

// LogFunc appends one line to a job log.
type LogFunc func(line string)

// Record is one job. It is written by the job's worker goroutine and read by
// any number of pollers; every accessor takes the record's own lock, so a
// reader never observes a half-appended line or a torn status.
type Record struct {
	mu sync.RWMutex

	id         string
	status     domain.JobStatus
	logs       []string
	counters   domain.Counters
	rules      []domain.RuleSummary
	contacts   int
	createdAt  time.Time
	startedAt  *time.Time
	finishedAt *time.Time
	err        string

	now func() time.Time
}

// NewRecord creates a queued job with a fresh id.
func NewRecord(req domain.DispatchRequest) *Record {
	r := &Record{
		id:       uuid.NewString(),
		status:   domain.JobQueued,
		contacts: len(req.Table.Rows),
		now:      time.Now,
	}
	r.createdAt = r.now()

	r.rules = make([]domain.RuleSummary, len(req.Rules))
	for i, rule := range req.Rules {
		r.rules[i] = domain.RuleSummary{
			Rule:    i + 1,
			Filters: rule.Filters.String(),
			SendAt:  rule.SendAt,
		}
	}

	r.logs = []string{r.stamp(fmt.Sprintf("Job %s created.", r.id))}
	return r
}

func (r *Record) ID() string {
	return r.id
}

func (r *Record) Status() domain.JobStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

func (r *Record) stamp(line string) string {
	return "[" + r.now().Format("15:04:05") + "] " + line
}

// Log appends line with a timestamp prefix. The line is mirrored to the
// process log at debug level.
func (r *Record) Log(line string) {
	r.mu.Lock()
	r.logs = append(r.logs, r.stamp(line))
	r.mu.Unlock()

	logger.Debugf("job %s: %s", r.id, line)
}

func (r *Record) Logf(format string, v ...any) {
	r.Log(fmt.Sprintf(format, v...))
}

// Logger returns a LogFunc bound to this record.
func (r *Record) Logger() LogFunc {
	return r.Log
}

// LogsSince returns a copy of the lines from offset on.
func (r *Record) LogsSince(offset int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if offset >= len(r.logs) {
		return []string{}
	}
	out := make([]string, len(r.logs)-offset)
	copy(out, r.logs[offset:])
	return out
}

// Outcome identifies what happened to one contact under one rule.
type Outcome int

const (
	OutcomeSent Outcome = iota
	OutcomeSkipped
	OutcomeError
)

// Count records an outcome against the job totals and, when rule is a valid
// 0-based index, against that rule.
func (r *Record) Count(rule int, o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rs *domain.RuleSummary
	if rule >= 0 && rule < len(r.rules) {
		rs = &r.rules[rule]
	}

	switch o {
	case OutcomeSent:
		r.counters.Sent++
		if rs != nil {
			rs.Sent++
		}
	case OutcomeSkipped:
		r.counters.Skipped++
		if rs != nil {
			rs.Skipped++
		}
	case OutcomeError:
		r.counters.Errors++
		if rs != nil {
			rs.Errors++
		}
	}
}

func (r *Record) Counters() domain.Counters {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters
}

func (r *Record) RuleSummaries() []domain.RuleSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.RuleSummary, len(r.rules))
	copy(out, r.rules)
	return out
}

func (r *Record) MarkRunning() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != domain.JobQueued {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.status, domain.JobRunning)
	}
	t := r.now()
	r.status = domain.JobRunning
	r.startedAt = &t
	return nil
}

func (r *Record) MarkFinished() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != domain.JobRunning {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.status, domain.JobFinished)
	}
	t := r.now()
	r.status = domain.JobFinished
	r.finishedAt = &t
	return nil
}

// MarkFailed moves a running job to failed, recording cause as the job error
// and as the last log line.
func (r *Record) MarkFailed(cause error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != domain.JobRunning {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.status, domain.JobFailed)
	}
	t := r.now()
	r.status = domain.JobFailed
	r.finishedAt = &t
	if cause != nil {
		r.err = cause.Error()
		r.logs = append(r.logs, r.stamp("Job error: "+r.err))
	}
	return nil
}

// Snapshot returns a deep copy of the record.
func (r *Record) Snapshot() domain.JobSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	logs := make([]string, len(r.logs))
	copy(logs, r.logs)
	rules := make([]domain.RuleSummary, len(r.rules))
	copy(rules, r.rules)

	return domain.JobSnapshot{
		ID:         r.id,
		Status:     r.status,
		Logs:       logs,
		Counters:   r.counters,
		Rules:      rules,
		Contacts:   r.contacts,
		CreatedAt:  r.createdAt,
		StartedAt:  copyTime(r.startedAt),
		FinishedAt: copyTime(r.finishedAt),
		Error:      r.err,
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
