//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"hirehub-ranking/internal/domain"
	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/infra/logging"
)

func newStatusEnv(t *testing.T) (*statusUC, *rankingEnv) {
	t.Helper()
	env := newRankingEnv(t, 4, &syncRunner{})
	uc := NewStatusUseCase(env.jobs, env.applicants, env.resumes, env.cache, logging.Nop())
	return uc, env
}

func TestGetRankingStatus_CacheFirst(t *testing.T) {
	ctx := context.Background()
	uc, env := newStatusEnv(t)
	task, _ := model.NewRankingTask("T1", "J1", 4, t0)
	_ = task.RecordSuccess(t0)
	_ = env.cache.SetRankingStatus(ctx, task)

	got, err := uc.GetRankingStatus(ctx, "R1", "J1", "")
	if err != nil {
		t.Fatalf("GetRankingStatus: %v", err)
	}
	if got.Source != model.SourceCache || got.Progress != 25 || got.TaskID != "T1" {
		t.Fatalf("got %+v", got)
	}

	t.Run("matching task id", func(t *testing.T) {
		if _, err := uc.GetRankingStatus(ctx, "R1", "J1", "T1"); err != nil {
			t.Fatal(err)
		}
	})
	t.Run("other task id is not found", func(t *testing.T) {
		if _, err := uc.GetRankingStatus(ctx, "R1", "J1", "T0"); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Fatalf("expected ErrTaskNotFound, got %v", err)
		}
	})
}

func TestGetRankingStatus_StoreFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("never ranked job reads not_started", func(t *testing.T) {
		uc, _ := newStatusEnv(t)
		got, err := uc.GetRankingStatus(ctx, "R1", "J1", "")
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != model.RankingStatusNotStarted || got.Progress != 0 || got.Total != 4 || got.Source != model.SourceStore {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("progress derived from scored applicants", func(t *testing.T) {
		uc, env := newStatusEnv(t)
		ranked := t0.Add(-time.Hour)
		j := env.jobs.jobs["J1"]
		j.RankingStatus = model.RankingStatusCompleted
		j.RankingTaskID = "T9"
		j.LastRankedAt = &ranked
		for _, id := range []string{"A1", "A2", "A3"} {
			_ = env.applicants.SaveScore(ctx, nil, id, 70, &model.Analysis{}, ranked)
		}

		got, err := uc.GetRankingStatus(ctx, "R1", "J1", "")
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != model.RankingStatusCompleted || got.Progress != 75 || got.Processed != 3 || got.Total != 4 {
			t.Fatalf("got %+v", got)
		}
		if got.LastRankedAt == nil || !got.LastRankedAt.Equal(ranked) {
			t.Fatalf("last ranked %v", got.LastRankedAt)
		}

		if got, err := uc.GetRankingStatus(ctx, "R1", "J1", "T9"); err != nil || got.TaskID != "T9" {
			t.Fatalf("task id fallback: %+v err=%v", got, err)
		}
		if _, err := uc.GetRankingStatus(ctx, "R1", "J1", "T8"); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Fatalf("expected ErrTaskNotFound, got %v", err)
		}
	})

	t.Run("cache outage is not an error", func(t *testing.T) {
		uc, env := newStatusEnv(t)
		env.cache.err = errors.New("redis: connection refused")
		got, err := uc.GetRankingStatus(ctx, "R1", "J1", "")
		if err != nil {
			t.Fatalf("cache outage leaked: %v", err)
		}
		if got.Source != model.SourceStore {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("job without applicants reports zero progress", func(t *testing.T) {
		uc, env := newStatusEnv(t)
		env.jobs.jobs["J2"] = &model.Job{ID: "J2", RecruiterID: "R1"}
		got, err := uc.GetRankingStatus(ctx, "R1", "J2", "")
		if err != nil || got.Progress != 0 || got.Total != 0 {
			t.Fatalf("got %+v err=%v", got, err)
		}
	})
}

func TestGetRankingStatus_Access(t *testing.T) {
	ctx := context.Background()
	uc, _ := newStatusEnv(t)
	if _, err := uc.GetRankingStatus(ctx, "R1", "missing", ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := uc.GetRankingStatus(ctx, "R2", "J1", ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := uc.GetRankingStatus(ctx, "", "J1", ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGetResults(t *testing.T) {
	ctx := context.Background()

	t.Run("cache", func(t *testing.T) {
		uc, env := newStatusEnv(t)
		_ = env.cache.SetResults(ctx, &model.RankingResults{JobID: "J1", TaskID: "T1", Entries: []model.RankedEntry{{CandidateID: "C2"}}})
		got, err := uc.GetResults(ctx, "R1", "J1")
		if err != nil || got.TaskID != "T1" || got.JobTitle != "Backend Engineer" {
			t.Fatalf("got %+v err=%v", got, err)
		}
	})

	t.Run("store fallback orders by score", func(t *testing.T) {
		uc, env := newStatusEnv(t)
		_ = env.applicants.SaveScore(ctx, nil, "A1", 40, &model.Analysis{}, t0)
		_ = env.applicants.SaveScore(ctx, nil, "A3", 90, &model.Analysis{}, t0)
		got, err := uc.GetResults(ctx, "R1", "J1")
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Entries) != 2 || got.Entries[0].CandidateID != "C3" || got.Total != 4 {
			t.Fatalf("got %+v", got)
		}
	})
}

func TestGetResumeStatus(t *testing.T) {
	ctx := context.Background()
	uc, env := newStatusEnv(t)
	env.resumes.resumes["RS2"].ProcessingStatus = ""
	env.resumes.resumes["RS2"].LastModified = t0

	st := model.NewResumeProcessingStatus("RT1", "RS1", t0)
	_ = st.Advance(60, t0)
	_ = env.cache.SetResumeStatus(ctx, st)

	got, err := uc.GetResumeStatus(ctx, "U1", "RS1")
	if err != nil || got.Progress != 60 || got.Status != model.ResumeStatusProcessing {
		t.Fatalf("cache: %+v err=%v", got, err)
	}

	got, err = uc.GetResumeStatus(ctx, "U1", "RS3")
	if err != nil || got.Status != model.ResumeStatusCompleted || got.Progress != 100 {
		t.Fatalf("store completed: %+v err=%v", got, err)
	}

	got, err = uc.GetResumeStatus(ctx, "U1", "RS2")
	if err != nil || got.Status != model.ResumeStatusUnknown || got.Progress != 0 || !got.Timestamp.Equal(t0) {
		t.Fatalf("store unknown: %+v err=%v", got, err)
	}

	if _, err := uc.GetResumeStatus(ctx, "U1", "RS404"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := uc.GetResumeStatus(ctx, "", "RS1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGetRankingStatus_CacheDroppedMidRun(t *testing.T) {
	ctx := context.Background()
	runner := &heldRunner{}
	env := newRankingEnv(t, 4, runner)
	env.uc.cfg.ScoreTimeout = 5 * time.Second
	env.scorer.hang["C4"] = true
	uc := NewStatusUseCase(env.jobs, env.applicants, env.resumes, env.cache, logging.Nop())

	started, err := env.uc.StartRanking(ctx, "R1", "J1", RankingOptions{})
	if err != nil {
		t.Fatalf("StartRanking: %v", err)
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = runner.release(runCtx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	deadline := time.Now().Add(3 * time.Second)
	for {
		if cur := env.cache.ranking("J1"); cur != nil && cur.Processed == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("run never scored three applicants")
		}
		time.Sleep(5 * time.Millisecond)
	}
	_ = env.cache.DeleteRankingStatus(ctx, "J1")

	got, err := uc.GetRankingStatus(ctx, "R1", "J1", started.TaskID)
	if err != nil {
		t.Fatalf("GetRankingStatus: %v", err)
	}
	if got.Source != model.SourceStore || got.Status != model.RankingStatusProcessing {
		t.Fatalf("got %+v", got)
	}
	if got.Processed != 3 || got.Total != 4 || got.Progress != 75 {
		t.Fatalf("derived counts %+v", got)
	}
}
