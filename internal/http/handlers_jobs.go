package httpx

import (
	"net/http"
	"strconv"

	"github.com/jobrelay/jobrelay/internal/domain/model"
	apperrors "github.com/jobrelay/jobrelay/internal/errors"
	"github.com/jobrelay/jobrelay/internal/service"
)

// JobHandlers holds the services used by the job endpoints.
type JobHandlers struct {
	Jobs     *service.JobService
	Executor *service.Executor
}

// CreateJob handles POST /jobs.
func (h *JobHandlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req model.CreateJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	job, err := h.Jobs.Create(r.Context(), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, job)
}

// ListJobs handles GET /jobs with optional status, priority, limit, and
// offset query parameters.
func (h *JobHandlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	jobs, err := h.Jobs.List(r.Context(), opts)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs, "count": len(jobs)})
}

// GetJob handles GET /jobs/{id}.
func (h *JobHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Jobs.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, job)
}

// RunJob handles POST /run-job/{id}. On success the job has been claimed and
// processing continues in the background; the response acknowledges the claim.
func (h *JobHandlers) RunJob(w http.ResponseWriter, r *http.Request) {
	ack, err := h.Executor.Run(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusAccepted, ack)
}

// JobStats handles GET /jobs/stats.
func (h *JobHandlers) JobStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Jobs.Stats(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}

func parseListOptions(r *http.Request) (*model.JobListOptions, error) {
	opts := &model.JobListOptions{}
	q := r.URL.Query()

	if raw := q.Get("status"); raw != "" {
		var status model.JobStatus
		if err := status.UnmarshalText([]byte(raw)); err != nil {
			return nil, apperrors.ValidationField("status", "invalid status filter")
		}
		opts.Status = &status
	}

	if raw := q.Get("priority"); raw != "" {
		var priority model.JobPriority
		if err := priority.UnmarshalText([]byte(raw)); err != nil {
			return nil, apperrors.ValidationField("priority", "invalid priority filter")
		}
		opts.Priority = &priority
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return nil, apperrors.ValidationField("limit", "limit must be a non-negative integer")
		}
		opts.Limit = limit
	}

	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return nil, apperrors.ValidationField("offset", "offset must be a non-negative integer")
		}
		opts.Offset = offset
	}

	return opts, nil
}
