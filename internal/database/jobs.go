package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const jobColumns = `id, handle, platform, job_type, status, attempt_count, last_error, next_eligible_at, created_at, updated_at`

func scanJob(row interface{ Scan(...any) error }) (FetchJob, error) {
	var j FetchJob
	err := row.Scan(&j.ID, &j.Handle, &j.Platform, &j.JobType, &j.Status, &j.AttemptCount,
		&j.LastError, &j.NextEligibleAt, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

const createFetchJob = `
INSERT INTO fetch_jobs (id, handle, platform, job_type, status, attempt_count, last_error, next_eligible_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, 'pending', 0, '', $5, $6, $6)
ON CONFLICT (handle, platform, job_type) WHERE status IN ('pending', 'running', 'retrying')
DO UPDATE SET updated_at = fetch_jobs.updated_at
RETURNING ` + jobColumns

type CreateFetchJobParams struct {
	ID             uuid.UUID
	Handle         string
	Platform       string
	JobType        string
	NextEligibleAt time.Time
}

// CreateFetchJob is idempotent per live (handle, platform, type) key: if a
// job is already in flight the existing row comes back unchanged.
func (q *Queries) CreateFetchJob(ctx context.Context, arg CreateFetchJobParams) (FetchJob, error) {
	row := q.db.QueryRowContext(ctx, createFetchJob,
		arg.ID, arg.Handle, arg.Platform, arg.JobType, arg.NextEligibleAt, time.Now().UTC())
	return scanJob(row)
}

const getFetchJob = `
SELECT ` + jobColumns + ` FROM fetch_jobs WHERE id = $1
`

func (q *Queries) GetFetchJob(ctx context.Context, id uuid.UUID) (FetchJob, error) {
	return scanJob(q.db.QueryRowContext(ctx, getFetchJob, id))
}

const claimDueJob = `
UPDATE fetch_jobs SET status = 'running', updated_at = $1
WHERE id = (
    SELECT id FROM fetch_jobs
    WHERE status IN ('pending', 'retrying') AND next_eligible_at <= $1
    ORDER BY next_eligible_at
    LIMIT 1
    FOR UPDATE SKIP LOCKED
)
RETURNING ` + jobColumns

// ClaimDueJob atomically hands one due job to a worker. SKIP LOCKED keeps
// concurrent workers off the same row.
func (q *Queries) ClaimDueJob(ctx context.Context) (FetchJob, error) {
	return scanJob(q.db.QueryRowContext(ctx, claimDueJob, time.Now().UTC()))
}

const updateFetchJobState = `
UPDATE fetch_jobs SET status = $2, attempt_count = $3, last_error = $4, next_eligible_at = $5, updated_at = $6
WHERE id = $1
RETURNING ` + jobColumns

type UpdateFetchJobStateParams struct {
	ID             uuid.UUID
	Status         string
	AttemptCount   int32
	LastError      string
	NextEligibleAt time.Time
}

func (q *Queries) UpdateFetchJobState(ctx context.Context, arg UpdateFetchJobStateParams) (FetchJob, error) {
	row := q.db.QueryRowContext(ctx, updateFetchJobState,
		arg.ID, arg.Status, arg.AttemptCount, arg.LastError, arg.NextEligibleAt, time.Now().UTC())
	return scanJob(row)
}

const rescueOrphanedJobs = `
UPDATE fetch_jobs SET status = 'pending', updated_at = $1
WHERE status = 'running' AND updated_at < $2
`

// RescueOrphanedJobs re-queues jobs a crashed worker left in 'running'.
// Attempt counters are preserved, so the backoff schedule resumes where it
// stopped instead of restarting.
func (q *Queries) RescueOrphanedJobs(ctx context.Context, olderThan time.Duration) (int64, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, rescueOrphanedJobs, now, now.Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
