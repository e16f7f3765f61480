package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jobrelay/jobrelay/internal/domain/model"
	apperrors "github.com/jobrelay/jobrelay/internal/errors"
	"github.com/jobrelay/jobrelay/internal/mocks"
)

const testDelay = 5 * time.Millisecond

func runningJob() *model.Job {
	job := sampleJob()
	job.Status = model.JobStatusRunning
	started := time.Date(2024, 1, 1, 12, 0, 1, 0, time.UTC)
	job.StartedAt = &started
	return job
}

func completedJob() *model.Job {
	job := runningJob()
	job.Status = model.JobStatusCompleted
	completed := time.Date(2024, 1, 1, 12, 0, 4, 0, time.UTC)
	job.CompletedAt = &completed
	return job
}

func waitForExecutor(t *testing.T, e *Executor) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Wait(ctx))
}

func TestNewExecutor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockJobRepository(ctrl)
	notifier := mocks.NewMockWebhookNotifier(ctrl)

	t.Run("success", func(t *testing.T) {
		e, err := NewExecutor(ExecutorOptions{Repo: repo, Notifier: notifier})
		require.NoError(t, err)
		assert.Equal(t, DefaultProcessingDelay, e.delay)
	})

	t.Run("missing repo", func(t *testing.T) {
		_, err := NewExecutor(ExecutorOptions{Notifier: notifier})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JobRepository is required")
	})

	t.Run("missing notifier", func(t *testing.T) {
		_, err := NewExecutor(ExecutorOptions{Repo: repo})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "WebhookNotifier is required")
	})
}

func TestExecutor_Run(t *testing.T) {
	t.Run("acknowledges immediately and processes in order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := mocks.NewMockJobRepository(ctrl)
		notifier := mocks.NewMockWebhookNotifier(ctrl)
		e := MustNewExecutor(ExecutorOptions{
			Repo:            repo,
			Notifier:        notifier,
			ProcessingDelay: testDelay,
		})

		claimed := runningJob()
		done := completedJob()

		gomock.InOrder(
			repo.EXPECT().MarkRunning(gomock.Any(), claimed.ID).Return(claimed, nil),
			repo.EXPECT().MarkCompleted(gomock.Any(), claimed.ID).Return(done, nil),
			notifier.EXPECT().Deliver(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, n *model.WebhookNotification) string {
					assert.Equal(t, done.ID, n.JobID)
					assert.Equal(t, done.TaskName, n.TaskName)
					assert.Equal(t, done.Priority, n.Priority)
					assert.JSONEq(t, string(done.Payload), string(n.Payload))
					assert.Equal(t, *done.CompletedAt, n.CompletedAt)
					return "Success: 200"
				}),
			repo.EXPECT().SetWebhookLog(gomock.Any(), claimed.ID, "Success: 200").Return(nil),
		)

		ack, err := e.Run(context.Background(), claimed.ID)
		require.NoError(t, err)
		assert.Equal(t, claimed.ID, ack.JobID)
		assert.Equal(t, model.JobStatusRunning, ack.Status)

		waitForExecutor(t, e)
	})

	t.Run("claim failure surfaces and skips processing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := mocks.NewMockJobRepository(ctrl)
		notifier := mocks.NewMockWebhookNotifier(ctrl)
		e := MustNewExecutor(ExecutorOptions{
			Repo:            repo,
			Notifier:        notifier,
			ProcessingDelay: testDelay,
		})

		repo.EXPECT().MarkRunning(gomock.Any(), "job-1").Return(nil, apperrors.Conflict("job is already running"))

		ack, err := e.Run(context.Background(), "job-1")
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
		assert.Nil(t, ack)
	})

	t.Run("failed delivery is recorded not retried", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := mocks.NewMockJobRepository(ctrl)
		notifier := mocks.NewMockWebhookNotifier(ctrl)
		e := MustNewExecutor(ExecutorOptions{
			Repo:            repo,
			Notifier:        notifier,
			ProcessingDelay: testDelay,
		})

		claimed := runningJob()
		done := completedJob()

		repo.EXPECT().MarkRunning(gomock.Any(), claimed.ID).Return(claimed, nil)
		repo.EXPECT().MarkCompleted(gomock.Any(), claimed.ID).Return(done, nil)
		notifier.EXPECT().Deliver(gomock.Any(), gomock.Any()).Return("Error: connection refused").Times(1)
		repo.EXPECT().SetWebhookLog(gomock.Any(), claimed.ID, "Error: connection refused").Return(nil)

		_, err := e.Run(context.Background(), claimed.ID)
		require.NoError(t, err)

		waitForExecutor(t, e)
	})

	t.Run("completion failure stops the pipeline", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := mocks.NewMockJobRepository(ctrl)
		notifier := mocks.NewMockWebhookNotifier(ctrl)
		e := MustNewExecutor(ExecutorOptions{
			Repo:            repo,
			Notifier:        notifier,
			ProcessingDelay: testDelay,
		})

		claimed := runningJob()

		repo.EXPECT().MarkRunning(gomock.Any(), claimed.ID).Return(claimed, nil)
		repo.EXPECT().MarkCompleted(gomock.Any(), claimed.ID).Return(nil, apperrors.Internal("db down"))
		// No Deliver, no SetWebhookLog.

		_, err := e.Run(context.Background(), claimed.ID)
		require.NoError(t, err)

		waitForExecutor(t, e)
	})

	t.Run("processing survives caller context cancellation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := mocks.NewMockJobRepository(ctrl)
		notifier := mocks.NewMockWebhookNotifier(ctrl)
		e := MustNewExecutor(ExecutorOptions{
			Repo:            repo,
			Notifier:        notifier,
			ProcessingDelay: testDelay,
		})

		claimed := runningJob()
		done := completedJob()

		repo.EXPECT().MarkRunning(gomock.Any(), claimed.ID).Return(claimed, nil)
		repo.EXPECT().MarkCompleted(gomock.Any(), claimed.ID).DoAndReturn(
			func(ctx context.Context, _ string) (*model.Job, error) {
				assert.NoError(t, ctx.Err(), "background context must not inherit cancellation")
				return done, nil
			})
		notifier.EXPECT().Deliver(gomock.Any(), gomock.Any()).Return("Success: 200")
		repo.EXPECT().SetWebhookLog(gomock.Any(), claimed.ID, "Success: 200").Return(nil)

		ctx, cancel := context.WithCancel(context.Background())
		_, err := e.Run(ctx, claimed.ID)
		require.NoError(t, err)
		cancel() // simulate the HTTP request ending right after the ack

		waitForExecutor(t, e)
	})

	t.Run("cache invalidated at each lifecycle write", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := mocks.NewMockJobRepository(ctrl)
		notifier := mocks.NewMockWebhookNotifier(ctrl)
		cache := mocks.NewMockCacheRepository(ctrl)
		jobs := MustNewJobService(JobServiceOptions{Repo: repo, Cache: cache})
		e := MustNewExecutor(ExecutorOptions{
			Repo:            repo,
			Notifier:        notifier,
			Jobs:            jobs,
			ProcessingDelay: testDelay,
		})

		claimed := runningJob()
		done := completedJob()

		repo.EXPECT().MarkRunning(gomock.Any(), claimed.ID).Return(claimed, nil)
		repo.EXPECT().MarkCompleted(gomock.Any(), claimed.ID).Return(done, nil)
		notifier.EXPECT().Deliver(gomock.Any(), gomock.Any()).Return("Success: 200")
		repo.EXPECT().SetWebhookLog(gomock.Any(), claimed.ID, "Success: 200").Return(nil)
		cache.EXPECT().Delete(gomock.Any(), jobCacheKey(claimed.ID)).Return(true, nil).Times(3)

		_, err := e.Run(context.Background(), claimed.ID)
		require.NoError(t, err)

		waitForExecutor(t, e)
	})
}

func TestExecutor_Wait(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockJobRepository(ctrl)
	notifier := mocks.NewMockWebhookNotifier(ctrl)
	e := MustNewExecutor(ExecutorOptions{
		Repo:            repo,
		Notifier:        notifier,
		ProcessingDelay: time.Second,
	})

	claimed := runningJob()
	done := completedJob()
	repo.EXPECT().MarkRunning(gomock.Any(), claimed.ID).Return(claimed, nil)
	repo.EXPECT().MarkCompleted(gomock.Any(), claimed.ID).Return(done, nil).AnyTimes()
	notifier.EXPECT().Deliver(gomock.Any(), gomock.Any()).Return("Success: 200").AnyTimes()
	repo.EXPECT().SetWebhookLog(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	_, err := e.Run(context.Background(), claimed.ID)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	waitErr := e.Wait(ctx)
	require.Error(t, waitErr)
	assert.ErrorIs(t, waitErr, context.DeadlineExceeded)

	// Let the in-flight job drain so the controller sees all expected calls.
	drainCtx, drainCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer drainCancel()
	require.NoError(t, e.Wait(drainCtx))
}

func TestExecutor_PayloadRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockJobRepository(ctrl)
	notifier := mocks.NewMockWebhookNotifier(ctrl)
	e := MustNewExecutor(ExecutorOptions{
		Repo:            repo,
		Notifier:        notifier,
		ProcessingDelay: testDelay,
	})

	claimed := runningJob()
	done := completedJob()
	done.Payload = json.RawMessage(`[{"step":1},{"step":2}]`)

	repo.EXPECT().MarkRunning(gomock.Any(), claimed.ID).Return(claimed, nil)
	repo.EXPECT().MarkCompleted(gomock.Any(), claimed.ID).Return(done, nil)
	notifier.EXPECT().Deliver(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, n *model.WebhookNotification) string {
			assert.Equal(t, done.Payload, n.Payload)
			return "Success: 204"
		})
	repo.EXPECT().SetWebhookLog(gomock.Any(), claimed.ID, "Success: 204").Return(nil)

	_, err := e.Run(context.Background(), claimed.ID)
	require.NoError(t, err)

	waitForExecutor(t, e)
}
