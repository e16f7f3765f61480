package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jobrelay/jobrelay/internal/domain/model"
	"github.com/jobrelay/jobrelay/internal/mocks"
)

func sampleJob() *model.Job {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &model.Job{
		ID:        "550e8400-e29b-41d4-a716-446655440000",
		TaskName:  "send-report",
		Payload:   json.RawMessage(`{"to":"ops@example.com"}`),
		Priority:  model.JobPriorityMedium,
		Status:    model.JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestNewJobService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockJobRepository(ctrl)

	t.Run("success", func(t *testing.T) {
		svc, err := NewJobService(JobServiceOptions{Repo: repo})
		require.NoError(t, err)
		assert.NotNil(t, svc)
		assert.Equal(t, defaultJobCacheTTL, svc.cacheTTL)
	})

	t.Run("success with logger", func(t *testing.T) {
		svc, err := NewJobService(JobServiceOptions{
			Repo:   repo,
			Logger: slog.Default(),
		})
		require.NoError(t, err)
		assert.NotNil(t, svc.logger)
	})

	t.Run("missing repo", func(t *testing.T) {
		svc, err := NewJobService(JobServiceOptions{})
		require.Error(t, err)
		assert.Nil(t, svc)
		assert.Contains(t, err.Error(), "JobRepository is required")
	})
}

func TestMustNewJobService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("success", func(t *testing.T) {
		svc := MustNewJobService(JobServiceOptions{Repo: mocks.NewMockJobRepository(ctrl)})
		assert.NotNil(t, svc)
	})

	t.Run("panic on error", func(t *testing.T) {
		assert.Panics(t, func() {
			MustNewJobService(JobServiceOptions{})
		})
	})
}

func TestJobService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockJobRepository(ctrl)
	svc := MustNewJobService(JobServiceOptions{Repo: repo})

	t.Run("success", func(t *testing.T) {
		req := &model.CreateJobRequest{
			TaskName: "send-report",
			Payload:  json.RawMessage(`{"to":"ops@example.com"}`),
			Priority: model.JobPriorityMedium,
		}
		want := sampleJob()
		repo.EXPECT().Create(gomock.Any(), req).Return(want, nil)

		job, err := svc.Create(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, want, job)
	})

	t.Run("repository error", func(t *testing.T) {
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

		job, err := svc.Create(context.Background(), &model.CreateJobRequest{})
		require.Error(t, err)
		assert.Nil(t, job)
	})
}

func TestJobService_GetByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("no cache configured", func(t *testing.T) {
		repo := mocks.NewMockJobRepository(ctrl)
		svc := MustNewJobService(JobServiceOptions{Repo: repo})

		want := sampleJob()
		repo.EXPECT().GetByID(gomock.Any(), want.ID).Return(want, nil)

		job, err := svc.GetByID(context.Background(), want.ID)
		require.NoError(t, err)
		assert.Equal(t, want, job)
	})

	t.Run("cache miss fills cache", func(t *testing.T) {
		repo := mocks.NewMockJobRepository(ctrl)
		cache := mocks.NewMockCacheRepository(ctrl)
		svc := MustNewJobService(JobServiceOptions{
			Repo:     repo,
			Cache:    cache,
			CacheTTL: time.Minute,
		})

		want := sampleJob()
		key := jobCacheKey(want.ID)

		cache.EXPECT().Get(gomock.Any(), key).Return(nil, nil)
		repo.EXPECT().GetByID(gomock.Any(), want.ID).Return(want, nil)
		cache.EXPECT().Set(gomock.Any(), key, gomock.Any(), time.Minute).Return(nil)

		job, err := svc.GetByID(context.Background(), want.ID)
		require.NoError(t, err)
		assert.Equal(t, want.ID, job.ID)
	})

	t.Run("cache hit skips repository", func(t *testing.T) {
		repo := mocks.NewMockJobRepository(ctrl)
		cache := mocks.NewMockCacheRepository(ctrl)
		svc := MustNewJobService(JobServiceOptions{Repo: repo, Cache: cache})

		want := sampleJob()
		raw, err := json.Marshal(want)
		require.NoError(t, err)

		cache.EXPECT().Get(gomock.Any(), jobCacheKey(want.ID)).Return(raw, nil)

		job, err := svc.GetByID(context.Background(), want.ID)
		require.NoError(t, err)
		assert.Equal(t, want.ID, job.ID)
		assert.Equal(t, want.TaskName, job.TaskName)
	})

	t.Run("cache errors fall through to repository", func(t *testing.T) {
		repo := mocks.NewMockJobRepository(ctrl)
		cache := mocks.NewMockCacheRepository(ctrl)
		svc := MustNewJobService(JobServiceOptions{Repo: repo, Cache: cache})

		want := sampleJob()
		cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
		repo.EXPECT().GetByID(gomock.Any(), want.ID).Return(want, nil)
		cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

		job, err := svc.GetByID(context.Background(), want.ID)
		require.NoError(t, err)
		assert.Equal(t, want.ID, job.ID)
	})

	t.Run("corrupt cache entry is dropped", func(t *testing.T) {
		repo := mocks.NewMockJobRepository(ctrl)
		cache := mocks.NewMockCacheRepository(ctrl)
		svc := MustNewJobService(JobServiceOptions{Repo: repo, Cache: cache})

		want := sampleJob()
		key := jobCacheKey(want.ID)

		cache.EXPECT().Get(gomock.Any(), key).Return([]byte(`{not json`), nil)
		cache.EXPECT().Delete(gomock.Any(), key).Return(true, nil)
		repo.EXPECT().GetByID(gomock.Any(), want.ID).Return(want, nil)
		cache.EXPECT().Set(gomock.Any(), key, gomock.Any(), gomock.Any()).Return(nil)

		job, err := svc.GetByID(context.Background(), want.ID)
		require.NoError(t, err)
		assert.Equal(t, want.ID, job.ID)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := mocks.NewMockJobRepository(ctrl)
		svc := MustNewJobService(JobServiceOptions{Repo: repo})

		repo.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, errors.New("not found"))

		job, err := svc.GetByID(context.Background(), "missing")
		require.Error(t, err)
		assert.Nil(t, job)
	})
}

func TestJobService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockJobRepository(ctrl)
	svc := MustNewJobService(JobServiceOptions{Repo: repo})

	t.Run("nil options get defaults", func(t *testing.T) {
		repo.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, opts *model.JobListOptions) ([]*model.Job, error) {
				assert.Equal(t, 50, opts.Limit)
				assert.Equal(t, 0, opts.Offset)
				return []*model.Job{sampleJob()}, nil
			})

		jobs, err := svc.List(context.Background(), nil)
		require.NoError(t, err)
		assert.Len(t, jobs, 1)
	})

	t.Run("pagination is clamped", func(t *testing.T) {
		repo.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, opts *model.JobListOptions) ([]*model.Job, error) {
				assert.Equal(t, 1000, opts.Limit)
				assert.Equal(t, 0, opts.Offset)
				return nil, nil
			})

		_, err := svc.List(context.Background(), &model.JobListOptions{Limit: 5000, Offset: -3})
		require.NoError(t, err)
	})

	t.Run("filters pass through", func(t *testing.T) {
		status := model.JobStatusPending
		priority := model.JobPriorityHigh
		repo.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, opts *model.JobListOptions) ([]*model.Job, error) {
				require.NotNil(t, opts.Status)
				require.NotNil(t, opts.Priority)
				assert.Equal(t, status, *opts.Status)
				assert.Equal(t, priority, *opts.Priority)
				return nil, nil
			})

		_, err := svc.List(context.Background(), &model.JobListOptions{
			Status:   &status,
			Priority: &priority,
		})
		require.NoError(t, err)
	})
}

func TestJobService_Stats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockJobRepository(ctrl)
	svc := MustNewJobService(JobServiceOptions{Repo: repo})

	want := &model.JobStats{Pending: 2, Running: 1, Completed: 7}
	repo.EXPECT().Stats(gomock.Any()).Return(want, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, stats)
}

func TestJobService_InvalidateCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("no-op without cache", func(t *testing.T) {
		svc := MustNewJobService(JobServiceOptions{Repo: mocks.NewMockJobRepository(ctrl)})
		svc.InvalidateCached(context.Background(), "any-id")
	})

	t.Run("deletes cache key", func(t *testing.T) {
		cache := mocks.NewMockCacheRepository(ctrl)
		svc := MustNewJobService(JobServiceOptions{
			Repo:  mocks.NewMockJobRepository(ctrl),
			Cache: cache,
		})

		cache.EXPECT().Delete(gomock.Any(), jobCacheKey("abc")).Return(true, nil)
		svc.InvalidateCached(context.Background(), "abc")
	})
}
