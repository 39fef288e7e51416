package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/job"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/httpx"
)

type Repo struct {
	db          *pgxpool.Pool
	maxAttempts int
}

func NewRepo(db *pgxpool.Pool, maxAttempts int) *Repo {
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	return &Repo{db: db, maxAttempts: maxAttempts}
}

const jobCols = `id, job_type, payload, status, attempts, max_attempts, last_error, run_at, created_at, updated_at`

func scanJob(row pgx.Row) (job.Job, error) {
	var j job.Job
	err := row.Scan(&j.ID, &j.Type, &j.Payload, &j.Status, &j.Attempts, &j.MaxAttempts,
		&j.LastError, &j.RunAt, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

// Enqueue stores a durable job for the worker process.
func (r *Repo) Enqueue(ctx context.Context, jobType string, payload any) (job.Job, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return job.Job{}, err
	}
	return scanJob(r.db.QueryRow(ctx, `
		INSERT INTO jobs (id, job_type, payload, status, max_attempts)
		VALUES ($1,$2,$3,'queued',$4)
		RETURNING `+jobCols+`
	`, uuid.New(), jobType, body, r.maxAttempts))
}

// Claim atomically takes one due job using SKIP LOCKED so concurrent
// workers never double-process. Returns nil when the queue is idle.
func (r *Repo) Claim(ctx context.Context) (*job.Job, error) {
	j, err := scanJob(r.db.QueryRow(ctx, `
		UPDATE jobs SET status='running', attempts = attempts + 1, updated_at = now()
		WHERE id = (
			SELECT id FROM jobs
			WHERE status = 'queued' AND run_at <= now()
			ORDER BY run_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+jobCols))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repo) MarkDone(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE jobs SET status='done', last_error='', updated_at=now() WHERE id=$1`, id)
	return err
}

// MarkFailed either reschedules the job with backoff or, once attempts
// are exhausted, parks it as failed for manual retry.
func (r *Repo) MarkFailed(ctx context.Context, j job.Job, cause string, retryAt *time.Time) error {
	if retryAt != nil {
		_, err := r.db.Exec(ctx, `
			UPDATE jobs SET status='queued', last_error=$2, run_at=$3, updated_at=now() WHERE id=$1
		`, j.ID, cause, *retryAt)
		return err
	}
	_, err := r.db.Exec(ctx, `
		UPDATE jobs SET status='failed', last_error=$2, updated_at=now() WHERE id=$1
	`, j.ID, cause)
	return err
}

func (r *Repo) ListFailed(ctx context.Context, limit int) ([]job.Job, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+jobCols+` FROM jobs WHERE status='failed' ORDER BY updated_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []job.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// Retry requeues a failed job with a fresh attempt budget.
func (r *Repo) Retry(ctx context.Context, id uuid.UUID) (job.Job, error) {
	j, err := scanJob(r.db.QueryRow(ctx, `
		UPDATE jobs SET status='queued', attempts=0, run_at=now(), updated_at=now()
		WHERE id=$1 AND status='failed'
		RETURNING `+jobCols+`
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return job.Job{}, &httpx.BusinessError{Msg: "job is not in failed state"}
	}
	return j, err
}
