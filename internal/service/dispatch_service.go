package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/onurcolak/contact-dispatch-service/internal/contacts"
	"github.com/onurcolak/contact-dispatch-service/internal/dispatch"
	"github.com/onurcolak/contact-dispatch-service/internal/domain"
	"github.com/onurcolak/contact-dispatch-service/internal/jobs"
	"github.com/onurcolak/contact-dispatch-service/pkg/ingest"
	"github.com/onurcolak/contact-dispatch-service/pkg/logger"
)

var (
	ErrDatabaseNotConfigured = errors.New("database not configured")
	ErrRedisNotConfigured    = errors.New("redis client not configured")
)

// Small internal interfaces so we can test without a scheduler, DB or Redis.
type jobScheduler interface {
	Submit(req domain.DispatchRequest) (*jobs.Record, error)
	Cancel(id string) error
}

type previewer interface {
	Preview(req domain.DispatchRequest) (*domain.DispatchPreview, error)
}

type messageRepository interface {
	GetByJob(ctx context.Context, jobID string, page, pageSize int) ([]domain.DispatchMessage, int64, error)
	GetStats(ctx context.Context) (sent, failed int64, err error)
}

type summaryCache interface {
	GetCachedJobSummary(ctx context.Context, jobID string) (*domain.JobSnapshot, error)
	GetAllCachedJobSummaries(ctx context.Context) (map[string]*domain.JobSnapshot, error)
}

type DispatchService struct {
	scheduler jobScheduler
	previewer previewer
	store     *jobs.Store
	repo      messageRepository
	cache     summaryCache
}

// NewDispatchService wires the service. repo and cache may be nil when the
// database or Redis is disabled.
func NewDispatchService(
	scheduler jobScheduler,
	previewer previewer,
	store *jobs.Store,
	repo messageRepository,
	cache summaryCache,
) *DispatchService {
	return &DispatchService{
		scheduler: scheduler,
		previewer: previewer,
		store:     store,
		repo:      repo,
		cache:     cache,
	}
}

// SubmitJob queues req and returns the queued snapshot right away. An empty
// rule set is rejected here; every other precondition is checked by the job
// itself and ends it as failed.
func (s *DispatchService) SubmitJob(req domain.DispatchRequest) (*domain.JobSnapshot, error) {
	if len(req.Rules) == 0 {
		return nil, &dispatch.PreconditionError{Err: dispatch.ErrNoRules}
	}

	job, err := s.scheduler.Submit(req)
	if err != nil {
		return nil, fmt.Errorf("failed to submit job: %w", err)
	}

	snap := job.Snapshot()
	return &snap, nil
}

func (s *DispatchService) Preview(req domain.DispatchRequest) (*domain.DispatchPreview, error) {
	return s.previewer.Preview(req)
}

// GetJob returns the live snapshot of a job. Jobs from before a restart are
// served from the summary cache when Redis is enabled.
func (s *DispatchService) GetJob(ctx context.Context, id string) (*domain.JobSnapshot, error) {
	job, err := s.store.Get(id)
	if err == nil {
		snap := job.Snapshot()
		return &snap, nil
	}

	if s.cache != nil {
		cached, cacheErr := s.cache.GetCachedJobSummary(ctx, id)
		if cacheErr != nil {
			logger.Warnf("Failed to read cached summary of job %s: %v", id, cacheErr)
		} else if cached != nil {
			return cached, nil
		}
	}

	return nil, err
}

func (s *DispatchService) GetJobLogs(id string, from int) (*domain.JobLogs, error) {
	job, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	if from < 0 {
		from = 0
	}

	status := job.Status()
	lines := job.LogsSince(from)

	return &domain.JobLogs{
		ID:     id,
		Status: status,
		From:   from,
		Next:   from + len(lines),
		Lines:  lines,
	}, nil
}

// ListJobs returns the snapshots of every job in memory, newest first,
// without their log lines.
func (s *DispatchService) ListJobs() []domain.JobSnapshot {
	records := s.store.List()

	out := make([]domain.JobSnapshot, 0, len(records))
	for _, r := range records {
		snap := r.Snapshot()
		snap.Logs = nil
		out = append(out, snap)
	}
	return out
}

func (s *DispatchService) CancelJob(id string) error {
	return s.scheduler.Cancel(id)
}

func (s *DispatchService) GetJobMessages(
	ctx context.Context,
	jobID string,
	page, pageSize int,
) ([]domain.DispatchMessage, int64, error) {
	if s.repo == nil {
		return nil, 0, ErrDatabaseNotConfigured
	}
	return s.repo.GetByJob(ctx, jobID, page, pageSize)
}

func (s *DispatchService) GetStats(ctx context.Context) (sent, failed int64, err error) {
	if s.repo == nil {
		return 0, 0, ErrDatabaseNotConfigured
	}
	return s.repo.GetStats(ctx)
}

func (s *DispatchService) GetCachedJobs(ctx context.Context) (map[string]*domain.JobSnapshot, error) {
	if s.cache == nil {
		return nil, ErrRedisNotConfigured
	}
	return s.cache.GetAllCachedJobSummaries(ctx)
}

// ParseContacts reads an uploaded sheet and detects its name and phone
// columns. A sheet without them is still returned, with ColumnError set.
func (s *DispatchService) ParseContacts(filename string, r io.Reader) (*domain.ParsedContacts, error) {
	table, err := ingest.Parse(filename, r)
	if err != nil {
		return nil, err
	}

	parsed := &domain.ParsedContacts{ContactTable: table}

	roles, err := contacts.ResolveColumns(table.Headers)
	if err != nil {
		parsed.ColumnError = err.Error()
	} else {
		parsed.Columns = &roles
	}

	logger.Infof("Parsed %s: %d columns, %d rows", filename, len(table.Headers), len(table.Rows))

	return parsed, nil
}
