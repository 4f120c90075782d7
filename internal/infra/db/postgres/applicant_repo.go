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

var _ repository.ApplicantRepository = (*applicantRepo)(nil)

type applicantRepo struct {
	pool *pgxpool.Pool
}

func NewApplicantRepo(pool *pgxpool.Pool) *applicantRepo {
	return &applicantRepo{pool: pool}
}

const applicantColumns = `
id, job_id, candidate_id, COALESCE(candidate_name, ''), COALESCE(resume_id, ''),
applied_at, job_fit_score, analysis, COALESCE(score_error, ''), scored_at`

func scanApplicant(row pgx.Row) (*model.Applicant, error) {
	var a model.Applicant
	var analysis []byte
	err := row.Scan(
		&a.ID, &a.JobID, &a.CandidateID, &a.CandidateName, &a.ResumeID,
		&a.AppliedAt, &a.JobFitScore, &analysis, &a.ScoreError, &a.ScoredAt,
	)
	if err != nil {
		return nil, scanErr(err)
	}
	if a.Analysis, err = decodeAnalysis(analysis); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return &a, nil
}

func (r *applicantRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Applicant, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Applicant
	for rows.Next() {
		a, err := scanApplicant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *applicantRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.Applicant, error) {
	return r.list(ctx, tx, `
SELECT `+applicantColumns+`
FROM applicants
WHERE job_id = $1
ORDER BY applied_at ASC, id ASC;`, jobID)
}

func (r *applicantRepo) ListRankedByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.Applicant, error) {
	return r.list(ctx, tx, `
SELECT `+applicantColumns+`
FROM applicants
WHERE job_id = $1 AND job_fit_score > 0 AND analysis IS NOT NULL
ORDER BY job_fit_score DESC, applied_at ASC, id ASC;`, jobID)
}

func (r *applicantRepo) CountByJob(ctx context.Context, tx repository.Tx, jobID string) (int, error) {
	return r.count(ctx, tx, `SELECT COUNT(*) FROM applicants WHERE job_id = $1`, jobID)
}

func (r *applicantRepo) CountScoredByJob(ctx context.Context, tx repository.Tx, jobID string) (int, error) {
	return r.count(ctx, tx, `SELECT COUNT(*) FROM applicants WHERE job_id = $1 AND job_fit_score > 0`, jobID)
}

func (r *applicantRepo) count(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, scanErr(err)
	}
	return n, nil
}

// SaveScore writes score and analysis in a single statement so readers never
// see one without the other.
func (r *applicantRepo) SaveScore(ctx context.Context, tx repository.Tx, applicantID string, score float64, analysis *model.Analysis, at time.Time) error {
	if analysis == nil {
		return domain.ErrInvalidArgument
	}
	enc, err := encodeAnalysis(analysis)
	if err != nil {
		return err
	}
	const q = `
UPDATE applicants SET
  job_fit_score = $2,
  analysis = $3::jsonb,
  score_error = NULL,
  scored_at = $4
WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, applicantID, score, enc, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RecordScoreFailure notes why scoring failed; an earlier score is left intact.
func (r *applicantRepo) RecordScoreFailure(ctx context.Context, tx repository.Tx, applicantID, reason string) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE applicants SET score_error = $2 WHERE id = $1`, applicantID, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *applicantRepo) ClearScoreErrors(ctx context.Context, tx repository.Tx, jobID string) (int, error) {
	tag, err := execSQL(ctx, r.pool, tx,
		`UPDATE applicants SET score_error = NULL WHERE job_id = $1 AND score_error IS NOT NULL`, jobID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
