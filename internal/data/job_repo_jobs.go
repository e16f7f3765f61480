package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jobrelay/jobrelay/internal/data/pgxutil"
	"github.com/jobrelay/jobrelay/internal/domain/model"
	apperrors "github.com/jobrelay/jobrelay/internal/errors"
)

// Create inserts a new job in the pending state and returns the stored row.
func (r *JobRepo) Create(
	ctx context.Context,
	req *model.CreateJobRequest,
) (*model.Job, error) {
	if req == nil {
		return nil, apperrors.Validation("create job request is required")
	}

	if validateErr := req.Validate(); validateErr != nil {
		return nil, apperrors.Validation(validateErr.Error())
	}

	query := `
      INSERT INTO jobs(task_name, payload, priority, status)
      VALUES ($1, $2, $3, 'pending')
      RETURNING ` + jobColumns

	var job *model.Job
	if txErr := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			rows, err := tx.Query(ctx, query, req.TaskName, []byte(req.Payload), req.Priority)
			if err != nil {
				return fmt.Errorf("insert job: %w", err)
			}
			defer rows.Close()

			j, collectErr := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Job])
			if collectErr != nil {
				return fmt.Errorf("collect job: %w", collectErr)
			}
			job = j
			return nil
		},
	}); txErr != nil {
		return nil, apperrors.MapDBError(txErr)
	}

	return job, nil
}

// GetByID retrieves a job by its ID.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	if uuid.Validate(id) != nil {
		return nil, apperrors.NotFound("job not found")
	}

	var job *model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			SELECT `+jobColumns+`
			FROM jobs
			WHERE id = $1
		`, id)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()

		j, collectErr := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Job])
		if collectErr != nil {
			return collectErr
		}
		job = j
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("job not found")
	}
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("get job: %w", err))
	}
	return job, nil
}

// jobFilterQueryBuilder accumulates WHERE clauses and positional args for list queries.
type jobFilterQueryBuilder struct {
	query  string
	args   []any
	argIdx int
}

func (b *jobFilterQueryBuilder) addFilter(column string, value any) {
	b.query += fmt.Sprintf(" AND %s = $%d", column, b.argIdx)
	b.args = append(b.args, value)
	b.argIdx++
}

func buildJobListQuery(opts *model.JobListOptions) (string, []any) {
	builder := &jobFilterQueryBuilder{
		query: `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE 1=1`,
		args:   []any{},
		argIdx: 1,
	}

	if opts.Status != nil && *opts.Status != "" {
		builder.addFilter("status", string(*opts.Status))
	}
	if opts.Priority != nil && *opts.Priority != "" {
		builder.addFilter("priority", string(*opts.Priority))
	}

	builder.query += `
		ORDER BY created_at DESC, id DESC`

	return builder.query, builder.args
}

// List returns jobs matching the optional status and priority filters,
// most recently created first.
func (r *JobRepo) List(ctx context.Context, opts *model.JobListOptions) ([]*model.Job, error) {
	if opts == nil {
		opts = &model.JobListOptions{}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50 // Default limit
	}
	if limit > 1000 {
		limit = 1000 // Max limit
	}
	offset := max(opts.Offset, 0)

	query, args := buildJobListQuery(opts)
	argIdx := len(args) + 1
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, offset)

	var result []*model.Job
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, query, args...)
		if qerr != nil {
			return fmt.Errorf("query jobs: %w", qerr)
		}
		defer rows.Close()

		vals, collectErr := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Job])
		if collectErr != nil {
			return fmt.Errorf("collect jobs: %w", collectErr)
		}
		result = vals
		return nil
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}

	return result, nil
}

// MarkRunning transitions a pending job to running in a single atomic
// statement. Concurrent callers race on the status predicate: exactly one
// wins, and losers get an error describing the job's actual state.
func (r *JobRepo) MarkRunning(ctx context.Context, id string) (*model.Job, error) {
	if uuid.Validate(id) != nil {
		return nil, apperrors.NotFound("job not found")
	}

	currentTime := r.timeProvider.Now().UTC()
	query := `
		UPDATE jobs
		SET status = 'running',
		    started_at = $2,
		    updated_at = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + jobColumns

	job, err := r.updateReturningJob(ctx, query, id, currentTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.classifyTransitionFailure(ctx, id, model.JobStatusPending)
	}
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("mark job running: %w", err))
	}
	return job, nil
}

// MarkCompleted transitions a running job to completed.
func (r *JobRepo) MarkCompleted(ctx context.Context, id string) (*model.Job, error) {
	if uuid.Validate(id) != nil {
		return nil, apperrors.NotFound("job not found")
	}

	currentTime := r.timeProvider.Now().UTC()
	query := `
		UPDATE jobs
		SET status = 'completed',
		    completed_at = $2,
		    updated_at = $2
		WHERE id = $1 AND status = 'running'
		RETURNING ` + jobColumns

	job, err := r.updateReturningJob(ctx, query, id, currentTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.classifyTransitionFailure(ctx, id, model.JobStatusRunning)
	}
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("complete job: %w", err))
	}
	return job, nil
}

func (r *JobRepo) updateReturningJob(ctx context.Context, query string, args ...any) (*model.Job, error) {
	var job *model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, query, args...)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()

		j, collectErr := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Job])
		if collectErr != nil {
			return collectErr
		}
		job = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// classifyTransitionFailure re-fetches a job after a zero-row transition
// update to report why the status predicate did not match.
func (r *JobRepo) classifyTransitionFailure(
	ctx context.Context,
	id string,
	wantStatus model.JobStatus,
) error {
	job, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	switch {
	case job.Status == wantStatus:
		// The job flipped back between the update and the re-fetch. Treat it
		// as a lost race rather than inventing a transition error.
		return apperrors.Conflict("job state changed concurrently, retry")
	case job.Status == model.JobStatusRunning:
		return apperrors.Conflict("job is already running")
	default:
		return apperrors.InvalidTransition(
			fmt.Sprintf("job is %s and cannot transition from %s", job.Status, wantStatus),
		)
	}
}

// SetWebhookLog records the webhook delivery outcome on a job.
func (r *JobRepo) SetWebhookLog(ctx context.Context, id, outcome string) error {
	if uuid.Validate(id) != nil {
		return apperrors.NotFound("job not found")
	}

	currentTime := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE jobs
		SET webhook_log = $2,
		    updated_at = $3
		WHERE id = $1
	`, id, outcome, currentTime)
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("set webhook log: %w", err))
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set webhook log rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("job not found")
	}
	return nil
}

// Stats returns counts of jobs in each lifecycle state.
func (r *JobRepo) Stats(ctx context.Context) (*model.JobStats, error) {
	var s model.JobStats
	err := r.DB.QueryRowContext(ctx, `
  SELECT
    count(*) FILTER (WHERE status = 'pending')   AS pending,
    count(*) FILTER (WHERE status = 'running')   AS running,
    count(*) FILTER (WHERE status = 'completed') AS completed
  FROM jobs
  `).Scan(
		&s.Pending,
		&s.Running,
		&s.Completed,
	)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("get job stats: %w", err))
	}
	return &s, nil
}
