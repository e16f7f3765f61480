package core

import (
	"context"

	"github.com/jobrelay/jobrelay/internal/domain/model"
)

// This file contains the port interfaces between the service layer and its
// collaborators. Services depend on these contracts, not on concrete
// implementations, so the execution engine stays testable with fakes.

// JobRepository defines the interface for job data operations.
type JobRepository interface {
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	List(ctx context.Context, opts *model.JobListOptions) ([]*model.Job, error)

	// MarkRunning atomically transitions a pending job to running and returns
	// the updated record. The check-and-set is a single statement; concurrent
	// calls for the same id see exactly one winner. Losers receive a typed
	// error: NotFound, Conflict (already running), or InvalidTransition
	// (already completed).
	MarkRunning(ctx context.Context, id string) (*model.Job, error)

	// MarkCompleted transitions a running job to completed and returns the
	// updated record, stamping completed_at.
	MarkCompleted(ctx context.Context, id string) (*model.Job, error)

	// SetWebhookLog records the outcome of a webhook delivery attempt. It is
	// only ever written after the completed transition has been persisted.
	SetWebhookLog(ctx context.Context, id, outcome string) error

	Stats(ctx context.Context) (*model.JobStats, error)
}

// WebhookNotifier performs a single outbound delivery of a completion
// notification. The outcome string is "Success: <code>" when a response was
// received and "Error: <reason>" otherwise; delivery failures are data, never
// errors.
type WebhookNotifier interface {
	Deliver(ctx context.Context, n *model.WebhookNotification) string
}
