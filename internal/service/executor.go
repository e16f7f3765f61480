package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jobrelay/jobrelay/internal/core"
	"github.com/jobrelay/jobrelay/internal/domain/model"
	"github.com/jobrelay/jobrelay/internal/observability/metrics"
	"github.com/jobrelay/jobrelay/internal/observability/statsd"
)

// DefaultProcessingDelay is the simulated work duration between a job
// starting and completing.
const DefaultProcessingDelay = 3 * time.Second

// ExecutorOptions groups dependencies for Executor.
type ExecutorOptions struct {
	Repo            core.JobRepository   // Required: job repository
	Notifier        core.WebhookNotifier // Required: webhook delivery client
	Jobs            *JobService          // Optional: used for cache invalidation
	ProcessingDelay time.Duration        // Optional: simulated work duration
	Logger          *slog.Logger         // Optional: structured logger
	Metrics         statsd.Sink          // Optional: metric sink
}

// Executor runs jobs asynchronously. Run claims the job and returns
// immediately; the processing phase, completion, and webhook delivery happen
// on a detached goroutine that outlives the triggering request.
type Executor struct {
	repo     core.JobRepository
	notifier core.WebhookNotifier
	jobs     *JobService
	delay    time.Duration
	logger   *slog.Logger
	metrics  statsd.Sink

	wg sync.WaitGroup
}

// NewExecutor constructs a new Executor.
func NewExecutor(opts ExecutorOptions) (*Executor, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Notifier == nil {
		return nil, errors.New("WebhookNotifier is required")
	}

	delay := opts.ProcessingDelay
	if delay <= 0 {
		delay = DefaultProcessingDelay
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "executor")
	}

	return &Executor{
		repo:     opts.Repo,
		notifier: opts.Notifier,
		jobs:     opts.Jobs,
		delay:    delay,
		logger:   logger,
		metrics:  opts.Metrics,
	}, nil
}

// MustNewExecutor constructs a new Executor and panics on error.
func MustNewExecutor(opts ExecutorOptions) *Executor {
	e, err := NewExecutor(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create Executor: %v", err))
	}
	return e
}

// Run atomically claims a pending job and starts processing it in the
// background. The returned ack reflects the running state; callers do not
// wait for completion. Claim failures surface as not found, conflict, or
// invalid transition errors depending on the job's actual state.
func (e *Executor) Run(ctx context.Context, id string) (*model.RunAck, error) {
	job, err := e.repo.MarkRunning(ctx, id)
	if err != nil {
		return nil, err
	}

	e.invalidate(ctx, id)
	if e.logger != nil {
		e.logger.InfoContext(ctx, "job started", "id", job.ID, "task_name", job.TaskName)
	}
	metrics.EmitJobLifecycle(e.metrics, metrics.JobMetric{
		TaskName:   job.TaskName,
		Transition: "running",
		Result:     metrics.ResultSuccess,
	})

	// The processing phase must survive the request that triggered it.
	bgCtx := context.WithoutCancel(ctx)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.process(bgCtx, job)
	}()

	return &model.RunAck{JobID: job.ID, Status: job.Status}, nil
}

// Wait blocks until all in-flight job runs have finished or the context
// expires. Used during graceful shutdown.
func (e *Executor) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight jobs: %w", ctx.Err())
	}
}

// process simulates the work, completes the job, delivers the webhook, and
// records the delivery outcome. Each step is ordered: the webhook only fires
// after the completed state is durable, and the outcome is written last.
func (e *Executor) process(ctx context.Context, claimed *model.Job) {
	started := time.Now()
	time.Sleep(e.delay)

	job, err := e.repo.MarkCompleted(ctx, claimed.ID)
	if err != nil {
		if e.logger != nil {
			e.logger.ErrorContext(ctx, "failed to complete job", "id", claimed.ID, "error", err)
		}
		metrics.EmitJobLifecycle(e.metrics, metrics.JobMetric{
			TaskName:   claimed.TaskName,
			Transition: "completed",
			Result:     metrics.ResultError,
		})
		return
	}
	e.invalidate(ctx, job.ID)

	if e.logger != nil {
		e.logger.InfoContext(ctx, "job completed", "id", job.ID, "task_name", job.TaskName)
	}
	metrics.EmitJobLifecycle(e.metrics, metrics.JobMetric{
		TaskName:   job.TaskName,
		Transition: "completed",
		Result:     metrics.ResultSuccess,
		Duration:   time.Since(started),
	})

	completedAt := time.Now().UTC()
	if job.CompletedAt != nil {
		completedAt = *job.CompletedAt
	}

	deliveryStart := time.Now()
	outcome := e.notifier.Deliver(ctx, &model.WebhookNotification{
		JobID:       job.ID,
		TaskName:    job.TaskName,
		Priority:    job.Priority,
		Payload:     job.Payload,
		CompletedAt: completedAt,
	})
	metrics.EmitWebhookDelivery(e.metrics, job.TaskName, outcome, time.Since(deliveryStart))

	if logErr := e.repo.SetWebhookLog(ctx, job.ID, outcome); logErr != nil {
		if e.logger != nil {
			e.logger.ErrorContext(ctx, "failed to record webhook outcome",
				"id", job.ID,
				"outcome", outcome,
				"error", logErr,
			)
		}
		return
	}
	e.invalidate(ctx, job.ID)
}

func (e *Executor) invalidate(ctx context.Context, id string) {
	if e.jobs != nil {
		e.jobs.InvalidateCached(ctx, id)
	}
}
