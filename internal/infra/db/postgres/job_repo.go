package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"hirehub-ranking/internal/domain"
	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*jobRepo)(nil)

type jobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *jobRepo {
	return &jobRepo{pool: pool}
}

const jobColumns = `
id, recruiter_id, title, COALESCE(description, ''),
COALESCE(requirements, '{}'), COALESCE(skills, '{}'),
COALESCE(ranking_status, ''), COALESCE(ranking_task_id, ''),
ranking_started_at, ranking_completed_at, last_ranked_at,
COALESCE(ranking_error, ''), created_at, updated_at`

func scanJob(row pgx.Row) (*model.Job, error) {
	var j model.Job
	var status string
	err := row.Scan(
		&j.ID, &j.RecruiterID, &j.Title, &j.Description,
		&j.Requirements, &j.Skills,
		&status, &j.RankingTaskID,
		&j.RankingStartedAt, &j.RankingCompletedAt, &j.LastRankedAt,
		&j.RankingError, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, scanErr(err)
	}
	j.RankingStatus = model.ParseRankingStatus(status)
	return &j, nil
}

func (r *jobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

func (r *jobRepo) MarkRankingStarted(ctx context.Context, tx repository.Tx, jobID, taskID string, at time.Time) error {
	const q = `
UPDATE jobs SET
  ranking_status = 'processing',
  ranking_task_id = $2,
  ranking_started_at = $3,
  ranking_completed_at = NULL,
  ranking_error = NULL,
  updated_at = $3
WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, jobID, taskID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepo) MarkRankingCompleted(ctx context.Context, tx repository.Tx, jobID, taskID string, at time.Time) error {
	const q = `
UPDATE jobs SET
  ranking_status = 'completed',
  ranking_completed_at = $3,
  last_ranked_at = $3,
  ranking_error = NULL,
  updated_at = $3
WHERE id = $1 AND ranking_task_id = $2;`
	return r.guardedUpdate(ctx, tx, q, jobID, taskID, at)
}

func (r *jobRepo) MarkRankingFailed(ctx context.Context, tx repository.Tx, jobID, taskID, reason string, at time.Time) error {
	const q = `
UPDATE jobs SET
  ranking_status = 'failed',
  ranking_completed_at = $3,
  ranking_error = $4,
  updated_at = $3
WHERE id = $1 AND ranking_task_id = $2;`
	return r.guardedUpdate(ctx, tx, q, jobID, taskID, at, reason)
}

// guardedUpdate runs a terminal write that only applies while taskID owns the job.
func (r *jobRepo) guardedUpdate(ctx context.Context, tx repository.Tx, q string, args ...interface{}) error {
	tag, err := execSQL(ctx, r.pool, tx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRankingSuperseded
	}
	return nil
}

func (r *jobRepo) ListStaleRankings(ctx context.Context, tx repository.Tx, startedBefore time.Time, limit int) ([]*model.Job, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := queryRows(ctx, r.pool, tx, `
SELECT `+jobColumns+`
FROM jobs
WHERE ranking_status = 'processing' AND ranking_started_at < $1
ORDER BY ranking_started_at
LIMIT $2;`, startedBefore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
