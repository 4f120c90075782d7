//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"hirehub-ranking/internal/domain"
	"hirehub-ranking/internal/domain/model"
)

func TestJobRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	repo := NewJobRepo(testPool)

	t.Run("should find a job with defaults for ranking columns", func(t *testing.T) {
		cleanup(t)
		seedJob(t, "job-1", "rec-1")

		j, err := repo.FindByID(ctx, nil, "job-1")
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if j.RecruiterID != "rec-1" || j.RankingStatus != model.RankingStatusNotStarted {
			t.Fatalf("unexpected job: %+v", j)
		}
		if len(j.Skills) != 2 || j.Skills[0] != "go" {
			t.Fatalf("skills not scanned: %v", j.Skills)
		}
		if _, err := repo.FindByID(ctx, nil, "missing"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("terminal writes are guarded by the owning task id", func(t *testing.T) {
		cleanup(t)
		seedJob(t, "job-1", "rec-1")
		now := time.Now().UTC().Truncate(time.Millisecond)

		if err := repo.MarkRankingStarted(ctx, nil, "job-1", "task-A", now); err != nil {
			t.Fatalf("start A: %v", err)
		}
		if err := repo.MarkRankingStarted(ctx, nil, "job-1", "task-B", now.Add(time.Second)); err != nil {
			t.Fatalf("start B: %v", err)
		}
		if err := repo.MarkRankingCompleted(ctx, nil, "job-1", "task-A", now); !errors.Is(err, domain.ErrRankingSuperseded) {
			t.Fatalf("expected ErrRankingSuperseded for stale task, got %v", err)
		}
		if err := repo.MarkRankingCompleted(ctx, nil, "job-1", "task-B", now.Add(2*time.Second)); err != nil {
			t.Fatalf("complete B: %v", err)
		}
		j, _ := repo.FindByID(ctx, nil, "job-1")
		if j.RankingStatus != model.RankingStatusCompleted || j.RankingTaskID != "task-B" || j.LastRankedAt == nil {
			t.Fatalf("unexpected job after completion: %+v", j)
		}
	})

	t.Run("failed run records its reason", func(t *testing.T) {
		cleanup(t)
		seedJob(t, "job-1", "rec-1")
		now := time.Now().UTC()
		_ = repo.MarkRankingStarted(ctx, nil, "job-1", "task-A", now)
		if err := repo.MarkRankingFailed(ctx, nil, "job-1", "task-A", "scorer down", now); err != nil {
			t.Fatalf("fail: %v", err)
		}
		j, _ := repo.FindByID(ctx, nil, "job-1")
		if j.RankingStatus != model.RankingStatusFailed || j.RankingError != "scorer down" {
			t.Fatalf("unexpected job: %+v", j)
		}
	})

	t.Run("stale processing runs are listed oldest first", func(t *testing.T) {
		cleanup(t)
		seedJob(t, "job-1", "rec-1")
		seedJob(t, "job-2", "rec-1")
		seedJob(t, "job-3", "rec-1")
		now := time.Now().UTC()
		_ = repo.MarkRankingStarted(ctx, nil, "job-1", "t1", now.Add(-2*time.Hour))
		_ = repo.MarkRankingStarted(ctx, nil, "job-2", "t2", now.Add(-3*time.Hour))
		_ = repo.MarkRankingStarted(ctx, nil, "job-3", "t3", now)

		jobs, err := repo.ListStaleRankings(ctx, nil, now.Add(-time.Hour), 10)
		if err != nil {
			t.Fatalf("ListStaleRankings: %v", err)
		}
		if len(jobs) != 2 || jobs[0].ID != "job-2" || jobs[1].ID != "job-1" {
			t.Fatalf("unexpected stale jobs: %+v", jobs)
		}
	})
}
