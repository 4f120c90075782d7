package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"hirehub-ranking/internal/domain"
	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/domain/ports/repository"
)

var _ repository.ResumeRepository = (*resumeRepo)(nil)

type resumeRepo struct {
	pool *pgxpool.Pool
}

func NewResumeRepo(pool *pgxpool.Pool) *resumeRepo {
	return &resumeRepo{pool: pool}
}

func (r *resumeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Resume, error) {
	const q = `
SELECT id, candidate_id, COALESCE(file_name, ''), COALESCE(storage_key, ''),
       COALESCE(parsed_text, ''), COALESCE(processing_status, ''),
       COALESCE(processing_error, ''), last_modified
FROM resumes WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var res model.Resume
	var status string
	if err := row.Scan(&res.ID, &res.CandidateID, &res.FileName, &res.StorageKey,
		&res.ParsedText, &status, &res.ProcessingError, &res.LastModified); err != nil {
		return nil, scanErr(err)
	}
	res.ProcessingStatus = model.ParseResumeStatus(status)
	return &res, nil
}

func (r *resumeRepo) UpdateProcessing(ctx context.Context, tx repository.Tx, id string, status model.ResumeStatus, reason string, at time.Time) error {
	const q = `
UPDATE resumes SET
  processing_status = $2,
  processing_error = NULLIF($3, ''),
  last_modified = $4
WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, string(status), reason, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *resumeRepo) SaveParsedText(ctx context.Context, tx repository.Tx, id, text string, at time.Time) error {
	tag, err := execSQL(ctx, r.pool, tx,
		`UPDATE resumes SET parsed_text = $2, last_modified = $3 WHERE id = $1`, id, text, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
