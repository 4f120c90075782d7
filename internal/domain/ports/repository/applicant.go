package repository

import (
	"context"
	"time"

	"hirehub-ranking/internal/domain/model"
)

type ApplicantRepository interface {
	// ListByJob returns the applicants of a job, oldest application first.
	ListByJob(ctx context.Context, tx Tx, jobID string) ([]*model.Applicant, error)
	CountByJob(ctx context.Context, tx Tx, jobID string) (int, error)
	// CountScoredByJob counts applicants with a positive job-fit score.
	CountScoredByJob(ctx context.Context, tx Tx, jobID string) (int, error)

	// SaveScore writes score and analysis together. domain.ErrNotFound when the applicant is gone.
	SaveScore(ctx context.Context, tx Tx, applicantID string, score float64, analysis *model.Analysis, at time.Time) error
	RecordScoreFailure(ctx context.Context, tx Tx, applicantID, reason string) error
	// ClearScoreErrors drops failure notes left by an earlier run of the job.
	ClearScoreErrors(ctx context.Context, tx Tx, jobID string) (int, error)

	// ListRankedByJob returns scored applicants, best score first.
	ListRankedByJob(ctx context.Context, tx Tx, jobID string) ([]*model.Applicant, error)
}
