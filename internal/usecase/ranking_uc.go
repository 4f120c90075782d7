package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"hirehub-ranking/internal/config"
	"hirehub-ranking/internal/domain"
	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/domain/ports/adapter"
	"hirehub-ranking/internal/domain/ports/repository"
	"hirehub-ranking/internal/infra/logging"
	"hirehub-ranking/internal/infra/metrics"
)

// Compile-time check
var _ RankingUseCase = (*rankingUC)(nil)

const (
	reasonAbandoned  = "ranking run abandoned"
	reasonCancelled  = "ranking run cancelled"
	reasonSuperseded = "ranking run superseded"
	reasonQueueFull  = "ranking queue full"

	staleBatch = 100
)

type RankingUseCase interface {
	// StartRanking admits at most one run per job and returns as soon as the
	// run is queued. Zero-applicant jobs and fresh cached results answer synchronously.
	StartRanking(ctx context.Context, recruiterID, jobID string, opts RankingOptions) (*StartResult, error)
	// ReapStale fails runs left processing by a dead worker. Returns how many were reaped.
	ReapStale(ctx context.Context) (int, error)
}

type RankingOptions struct {
	Force bool // ignore fresh cached results
}

type StartResult struct {
	TaskID    string
	Task      *model.RankingTask
	Priority  int
	CacheHit  bool
	Completed bool
}

// Submitter runs work in the background; worker.Pool satisfies it.
type Submitter interface {
	Submit(task func(ctx context.Context) error) error
}

type RankingDeps struct {
	Tx         repository.TransactionManager
	Jobs       repository.JobRepository
	Applicants repository.ApplicantRepository
	Resumes    repository.ResumeRepository
	Cache      repository.StatusCache
	Locker     repository.Locker
	Scorer     adapter.Scorer
	Blobs      adapter.BlobStore
	Events     adapter.StatusPublisher
	Runner     Submitter
}

type rankingUC struct {
	RankingDeps
	cfg config.RankingConfig
	log *zerolog.Logger
	now func() time.Time
}

func NewRankingUseCase(deps RankingDeps, cfg config.RankingConfig, logger *zerolog.Logger) *rankingUC {
	l := logger.With().Str("component", "RankingUC").Logger()
	return &rankingUC{RankingDeps: deps, cfg: cfg, log: &l, now: time.Now}
}

func rankingLockKey(jobID string) string {
	return fmt.Sprintf("ranking:job:%s:lock", jobID)
}

func parsedResumeKey(resumeID string) string {
	return fmt.Sprintf("parsed/%s.md", resumeID)
}

func (r *rankingUC) StartRanking(ctx context.Context, recruiterID, jobID string, opts RankingOptions) (*StartResult, error) {
	defer logging.TraceDuration(r.log, "RankingUC.StartRanking")()

	recruiterID, jobID = strings.TrimSpace(recruiterID), strings.TrimSpace(jobID)
	if recruiterID == "" || jobID == "" {
		return nil, domain.ErrInvalidArgument
	}
	job, err := r.Jobs.FindByID(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, err
	}
	if !job.OwnedBy(recruiterID) {
		return nil, domain.ErrUnauthorized
	}
	ctx = logging.WithJobID(ctx, jobID)
	log := logging.With(ctx, r.log)

	key := rankingLockKey(jobID)
	token, err := r.Locker.TryLock(ctx, key, r.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockNotAcquired) {
			metrics.IncRankingRun("rejected")
			return nil, domain.ErrRankingInProgress
		}
		return nil, fmt.Errorf("acquire ranking lock: %w", err)
	}
	release := func() {
		if err := r.Locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			log.Warn().Err(err).Msg("release ranking lock")
		}
	}

	// an expired lock does not prove the previous run is gone
	if cur, err := r.Cache.GetRankingStatus(ctx, jobID); err == nil &&
		cur.Status == model.RankingStatusProcessing && r.now().Sub(cur.UpdatedAt) < r.cfg.StaleAfter {
		release()
		metrics.IncRankingRun("rejected")
		return nil, domain.ErrRankingInProgress
	}

	// reuse only once no live run owns the job
	if !opts.Force {
		if res := r.freshResults(ctx, jobID); res != nil {
			release()
			metrics.IncRankingRun("cached")
			log.Info().Time("ranked_at", res.RankedAt).Msg("serving fresh ranking results")
			return &StartResult{TaskID: res.TaskID, Task: taskFromResults(res), CacheHit: true, Completed: true}, nil
		}
	}

	applicants, err := r.Applicants.ListByJob(ctx, repository.NoTX, jobID)
	if err != nil {
		release()
		return nil, fmt.Errorf("list applicants: %w", err)
	}

	now := r.now()
	taskID := ulid.Make().String()
	task, err := model.NewRankingTask(taskID, jobID, len(applicants), now)
	if err != nil {
		release()
		return nil, err
	}
	ctx = logging.WithTaskID(ctx, taskID)
	log = logging.With(ctx, r.log)

	if err := r.Cache.SetRankingStatus(ctx, task.Clone()); err != nil {
		log.Warn().Err(err).Msg("write initial ranking status")
	}
	err = r.Tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := r.Jobs.MarkRankingStarted(ctx, tx, jobID, taskID, now); err != nil {
			return err
		}
		_, err := r.Applicants.ClearScoreErrors(ctx, tx, jobID)
		return err
	})
	if err != nil {
		_ = task.Fail("could not record ranking start", r.now())
		_ = r.Cache.SetRankingStatus(ctx, task.Clone())
		release()
		return nil, fmt.Errorf("mark ranking started: %w", err)
	}
	metrics.IncRankingRun("started")

	run := &rankingRun{
		uc:         r,
		job:        job,
		applicants: applicants,
		lockKey:    key,
		lockToken:  token,
		task:       task,
		log:        log,
		startedAt:  now,
	}

	if len(applicants) == 0 {
		run.complete(ctx)
		release()
		snap := run.snapshot()
		return &StartResult{TaskID: taskID, Task: snap, Completed: snap.Status == model.RankingStatusCompleted}, nil
	}

	initial := task.Clone()
	err = r.Runner.Submit(func(bg context.Context) error {
		defer release()
		return run.execute(logging.WithTaskID(logging.WithJobID(bg, jobID), taskID))
	})
	if err != nil {
		run.fail(ctx, reasonQueueFull)
		release()
		log.Error().Err(err).Msg("ranking run not queued")
		return nil, fmt.Errorf("submit ranking run: %w", domain.ErrQueueFull)
	}

	log.Info().Int("applicants", len(applicants)).Int("priority", model.Priority(len(applicants))).
		Bool("force", opts.Force).Msg("ranking run queued")
	return &StartResult{TaskID: taskID, Task: initial, Priority: model.Priority(len(applicants))}, nil
}

// freshResults returns cached results young enough to reuse, or nil.
func (r *rankingUC) freshResults(ctx context.Context, jobID string) *model.RankingResults {
	if r.cfg.FreshFor <= 0 {
		return nil
	}
	res, err := r.Cache.GetResults(ctx, jobID)
	if err != nil {
		return nil
	}
	if !res.Fresh(r.now(), r.cfg.FreshFor) {
		return nil
	}
	return res
}

func taskFromResults(res *model.RankingResults) *model.RankingTask {
	ranked := res.RankedAt
	return &model.RankingTask{
		TaskID:           res.TaskID,
		JobID:            res.JobID,
		Status:           model.RankingStatusCompleted,
		Progress:         100,
		Total:            res.Total,
		Processed:        res.Processed,
		Failed:           res.Total - res.Processed,
		UpdatedAt:        res.RankedAt,
		LastRankedAt:     &ranked,
		HasCachedResults: true,
		Source:           model.SourceCache,
	}
}

func (r *rankingUC) ReapStale(ctx context.Context) (int, error) {
	defer logging.TraceDuration(r.log, "RankingUC.ReapStale")()

	now := r.now()
	jobs, err := r.Jobs.ListStaleRankings(ctx, repository.NoTX, now.Add(-r.cfg.StaleAfter), staleBatch)
	if err != nil {
		return 0, err
	}
	reaped := 0
	for _, j := range jobs {
		held, err := r.Locker.Held(ctx, rankingLockKey(j.ID))
		if err != nil {
			r.log.Warn().Err(err).Str("job_id", j.ID).Msg("check ranking lock")
			continue
		}
		if held {
			continue
		}
		err = r.Jobs.MarkRankingFailed(ctx, repository.NoTX, j.ID, j.RankingTaskID, reasonAbandoned, now)
		if errors.Is(err, domain.ErrRankingSuperseded) {
			continue
		}
		if err != nil {
			r.log.Error().Err(err).Str("job_id", j.ID).Msg("mark abandoned run failed")
			continue
		}
		if cur, err := r.Cache.GetRankingStatus(ctx, j.ID); err == nil &&
			cur.TaskID == j.RankingTaskID && cur.Status == model.RankingStatusProcessing {
			_ = cur.Fail(reasonAbandoned, now)
			if err := r.Cache.SetRankingStatus(ctx, cur); err != nil {
				r.log.Warn().Err(err).Str("job_id", j.ID).Msg("write abandoned status")
			}
		}
		reaped++
		r.log.Warn().Str("job_id", j.ID).Str("task_id", j.RankingTaskID).Msg("abandoned ranking run failed")
	}
	metrics.AddStaleRunsReaped(reaped)
	return reaped, nil
}
