// Package model defines the core data types and structures used throughout the jobrelay system.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobStatus represents the current lifecycle state of a job.
type JobStatus string

// JobPriority represents the advisory priority of a job. It does not affect
// scheduling order; it is carried through to the completion notification.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobPriority string

const (
	// JobStatusPending indicates a job has been created and not yet run.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates a job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates a job has finished. Terminal.
	JobStatusCompleted JobStatus = "completed"

	// JobPriorityLow is the lowest advisory priority.
	JobPriorityLow JobPriority = "low"
	// JobPriorityMedium is the default advisory priority.
	JobPriorityMedium JobPriority = "medium"
	// JobPriorityHigh is the highest advisory priority.
	JobPriorityHigh JobPriority = "high"
)

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	return s == JobStatusPending || s == JobStatusRunning || s == JobStatusCompleted
}

// Valid returns true if the JobPriority is valid.
func (p JobPriority) Valid() bool {
	return p == JobPriorityLow || p == JobPriorityMedium || p == JobPriorityHigh
}

// UnmarshalText implements encoding.TextUnmarshaler for JobPriority to allow
// case-insensitive parsing from JSON bodies, query strings, and env vars.
func (p *JobPriority) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	jp := JobPriority(v)
	if jp.Valid() {
		*p = jp
		return nil
	}
	return fmt.Errorf("invalid JobPriority: %q", v)
}

// UnmarshalText implements encoding.TextUnmarshaler for JobStatus.
func (s *JobStatus) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	js := JobStatus(v)
	if js.Valid() {
		*s = js
		return nil
	}
	return fmt.Errorf("invalid JobStatus: %q", v)
}

// Job represents a unit of submitted work tracked through the
// pending/running/completed lifecycle.
type Job struct {
	ID          string          `json:"id"                    db:"id"`
	TaskName    string          `json:"taskName"              db:"task_name"`
	Payload     json.RawMessage `json:"payload"               db:"payload"`
	Priority    JobPriority     `json:"priority"              db:"priority"`
	Status      JobStatus       `json:"status"                db:"status"`
	WebhookLog  *string         `json:"webhookLog,omitempty"  db:"webhook_log"`
	StartedAt   *time.Time      `json:"startedAt,omitempty"   db:"started_at"`
	CompletedAt *time.Time      `json:"completedAt,omitempty" db:"completed_at"`
	CreatedAt   time.Time       `json:"createdAt"             db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt"             db:"updated_at"`
}

// CreateJobRequest represents a request to create a new job.
type CreateJobRequest struct {
	TaskName string          `json:"taskName"`
	Payload  json.RawMessage `json:"payload"`
	Priority JobPriority     `json:"priority"`
}

// Validate validates the CreateJobRequest fields. Payloads must be
// syntactically valid JSON documents (an object or an array); scalars and
// malformed text are rejected before anything touches the repository.
func (r *CreateJobRequest) Validate() error {
	if strings.TrimSpace(r.TaskName) == "" {
		return errors.New("task name is required")
	}
	if !r.Priority.Valid() {
		return errors.New("priority must be one of low, medium, high")
	}
	if len(r.Payload) == 0 {
		return errors.New("payload is required")
	}
	if !json.Valid(r.Payload) {
		return errors.New("payload must be valid JSON")
	}
	if !isJSONDocument(r.Payload) {
		return errors.New("payload must be a JSON object or array")
	}
	return nil
}

// isJSONDocument reports whether raw begins with an object or array opener.
// raw is assumed to already be syntactically valid JSON.
func isJSONDocument(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '{', '[':
			return true
		default:
			return false
		}
	}
	return false
}

// JobListOptions holds optional filters and pagination for listing jobs.
// Filters are exact-match and independently combinable.
type JobListOptions struct {
	Status   *JobStatus
	Priority *JobPriority
	Limit    int
	Offset   int
}

// JobStats represents counts of jobs in each lifecycle state.
type JobStats struct {
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
}

// RunAck acknowledges that a run has started; the caller does not wait for
// completion.
type RunAck struct {
	JobID  string    `json:"jobId"`
	Status JobStatus `json:"status"`
}

// WebhookNotification is the body delivered to the configured webhook endpoint
// after a job completes.
type WebhookNotification struct {
	JobID       string          `json:"jobId"`
	TaskName    string          `json:"taskName"`
	Priority    JobPriority     `json:"priority"`
	Payload     json.RawMessage `json:"payload"`
	CompletedAt time.Time       `json:"completedAt"`
}
