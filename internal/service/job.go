// Package service implements the business logic layered over the job
// repository: CRUD with caching, and asynchronous job execution.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jobrelay/jobrelay/internal/core"
	"github.com/jobrelay/jobrelay/internal/domain/model"
	"github.com/jobrelay/jobrelay/internal/observability/statsd"
)

const defaultJobCacheTTL = 30 * time.Second

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Repo     core.JobRepository   // Required: job repository
	Cache    core.CacheRepository // Optional: read-through cache for job lookups
	CacheTTL time.Duration        // Optional: TTL for cached jobs
	Logger   *slog.Logger         // Optional: structured logger
	Metrics  statsd.Sink          // Optional: metric sink
}

// JobService provides business logic for job submission and inspection.
// Lookups by ID go through an optional read-through cache; any lifecycle
// write invalidates the cached entry.
type JobService struct {
	repo     core.JobRepository
	cache    core.CacheRepository
	cacheTTL time.Duration
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultJobCacheTTL
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "job_service")
	}

	return &JobService{
		repo:     opts.Repo,
		cache:    opts.Cache,
		cacheTTL: ttl,
		logger:   logger,
		metrics:  opts.Metrics,
	}, nil
}

// MustNewJobService constructs a new JobService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewJobService(opts JobServiceOptions) *JobService {
	svc, err := NewJobService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create JobService: %v", err))
	}
	return svc
}

func jobCacheKey(id string) string {
	return "jobrelay:job:" + id
}

// Create creates a new job in the pending state.
func (s *JobService) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	job, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "job created",
			"id", job.ID,
			"task_name", job.TaskName,
			"priority", job.Priority,
		)
	}
	if s.metrics != nil {
		s.metrics.Count("job.created", 1, map[string]string{"task_name": job.TaskName})
	}

	return job, nil
}

// GetByID returns a job by its ID, serving from cache when possible.
func (s *JobService) GetByID(ctx context.Context, id string) (*model.Job, error) {
	if cached := s.cacheGet(ctx, id); cached != nil {
		return cached, nil
	}

	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job by id %s: %w", id, err)
	}

	s.cacheSet(ctx, job)
	return job, nil
}

// List returns jobs matching the optional status and priority filters.
// Pagination defaults are normalized here to avoid drift across layers.
func (s *JobService) List(ctx context.Context, opts *model.JobListOptions) ([]*model.Job, error) {
	if opts == nil {
		opts = &model.JobListOptions{}
	}

	p := normalizePagination(opts.Limit, opts.Offset)
	opts.Limit = p.Limit
	opts.Offset = p.Offset

	jobs, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// Stats returns counts of jobs in each lifecycle state.
func (s *JobService) Stats(ctx context.Context) (*model.JobStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("get job stats: %w", err)
	}
	return stats, nil
}

// InvalidateCached drops the cached entry for a job after a lifecycle write.
func (s *JobService) InvalidateCached(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Delete(ctx, jobCacheKey(id)); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "cache invalidation failed", "job_id", id, "error", err)
	}
}

func (s *JobService) cacheGet(ctx context.Context, id string) *model.Job {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, jobCacheKey(id))
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "cache lookup failed", "job_id", id, "error", err)
		}
		return nil
	}
	if raw == nil {
		return nil
	}

	var job model.Job
	if unmarshalErr := json.Unmarshal(raw, &job); unmarshalErr != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "cached job is corrupt, dropping", "job_id", id, "error", unmarshalErr)
		}
		s.InvalidateCached(ctx, id)
		return nil
	}
	return &job
}

func (s *JobService) cacheSet(ctx context.Context, job *model.Job) {
	if s.cache == nil || job == nil {
		return
	}

	raw, err := json.Marshal(job)
	if err != nil {
		return
	}
	if setErr := s.cache.Set(ctx, jobCacheKey(job.ID), raw, s.cacheTTL); setErr != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "cache store failed", "job_id", job.ID, "error", setErr)
	}
}

// paginationParams holds normalized pagination parameters.
type paginationParams struct {
	Limit  int
	Offset int
}

// normalizePagination clamps pagination parameters to safe defaults.
// Default limit: 50, max limit: 1000, min offset: 0.
func normalizePagination(limit, offset int) paginationParams {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	return paginationParams{Limit: limit, Offset: offset}
}
