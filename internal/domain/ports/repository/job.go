package repository

import (
	"context"
	"time"

	"hirehub-ranking/internal/domain/model"
)

type JobRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Job, error)

	// MarkRankingStarted records a new run on the job, taking ownership of it.
	MarkRankingStarted(ctx context.Context, tx Tx, jobID, taskID string, at time.Time) error
	// MarkRankingCompleted and MarkRankingFailed only touch the job while taskID
	// still owns it; otherwise they return domain.ErrRankingSuperseded.
	MarkRankingCompleted(ctx context.Context, tx Tx, jobID, taskID string, at time.Time) error
	MarkRankingFailed(ctx context.Context, tx Tx, jobID, taskID, reason string, at time.Time) error

	// ListStaleRankings returns jobs still marked processing whose run started before the cutoff.
	ListStaleRankings(ctx context.Context, tx Tx, startedBefore time.Time, limit int) ([]*model.Job, error)
}
