package repository

import (
	"context"
	"time"

	"hirehub-ranking/internal/domain/model"
)

// StatusCache is the fast, expiring store polled by clients. Reads of absent
// or expired keys return domain.ErrCacheMiss. Writes are last-write-wins.
type StatusCache interface {
	SetRankingStatus(ctx context.Context, task *model.RankingTask) error
	GetRankingStatus(ctx context.Context, jobID string) (*model.RankingTask, error)
	DeleteRankingStatus(ctx context.Context, jobID string) error

	SetResults(ctx context.Context, res *model.RankingResults) error
	GetResults(ctx context.Context, jobID string) (*model.RankingResults, error)

	SetResumeStatus(ctx context.Context, st *model.ResumeProcessingStatus) error
	GetResumeStatus(ctx context.Context, resumeID string) (*model.ResumeProcessingStatus, error)
}

// Locker is a token-guarded distributed lock with expiry.
type Locker interface {
	// TryLock returns domain.ErrLockNotAcquired when another holder owns key.
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	// Refresh extends the lock; domain.ErrLockLost when token no longer owns it.
	Refresh(ctx context.Context, key, token string, ttl time.Duration) error
	Unlock(ctx context.Context, key, token string) error
	Held(ctx context.Context, key string) (bool, error)
}
