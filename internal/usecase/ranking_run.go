package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"hirehub-ranking/internal/domain"
	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/domain/ports/adapter"
	"hirehub-ranking/internal/domain/ports/repository"
	"hirehub-ranking/internal/infra/metrics"
)

// terminalWriteTimeout bounds the final store/cache writes once the run context is gone.
const terminalWriteTimeout = 10 * time.Second

// rankingRun is one background ranking of a job's applicants.
type rankingRun struct {
	uc         *rankingUC
	job        *model.Job
	applicants []*model.Applicant
	lockKey    string
	lockToken  string
	log        *zerolog.Logger
	startedAt  time.Time

	// mu guards task and scored, and serializes cache writes so the last
	// write carries the highest progress.
	mu     sync.Mutex
	task   *model.RankingTask
	scored []*model.Applicant
}

func (run *rankingRun) snapshot() *model.RankingTask {
	run.mu.Lock()
	defer run.mu.Unlock()
	return run.task.Clone()
}

func (run *rankingRun) execute(ctx context.Context) error {
	metrics.RunStarted()
	defer metrics.RunFinished()

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	if run.lockToken != "" {
		go run.heartbeat(hbCtx)
	}

	profile := jobProfile(run.job)
	limit := run.uc.cfg.Concurrency
	if limit <= 0 {
		limit = 1
	}
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	var dispatchErr error

	for _, a := range run.applicants {
		if err := ctx.Err(); err != nil {
			dispatchErr = err
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			dispatchErr = ctx.Err()
		}
		if dispatchErr != nil {
			break
		}
		wg.Add(1)
		go func(a *model.Applicant) {
			defer wg.Done()
			defer func() { <-sem }()
			run.scoreOne(ctx, profile, a)
		}(a)
	}
	wg.Wait()
	stopHeartbeat()

	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), terminalWriteTimeout)
	defer cancel()

	snap := run.snapshot()
	switch {
	case dispatchErr != nil:
		run.fail(tctx, reasonCancelled)
		return dispatchErr
	case snap.Total > 0 && snap.Processed == 0:
		run.fail(tctx, domain.ErrAllScoringFailed.Error())
		return domain.ErrAllScoringFailed
	default:
		run.complete(tctx)
		return nil
	}
}

// heartbeat keeps the run lock alive while applicants are scored.
func (run *rankingRun) heartbeat(ctx context.Context) {
	ttl := run.uc.cfg.LockTTL
	if ttl < 3*time.Millisecond {
		return
	}
	t := time.NewTicker(ttl / 3)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			err := run.uc.Locker.Refresh(ctx, run.lockKey, run.lockToken, ttl)
			if errors.Is(err, domain.ErrLockLost) {
				run.log.Warn().Msg("ranking lock lost; completion will be checked against the job record")
				return
			}
			if err != nil && ctx.Err() == nil {
				run.log.Warn().Err(err).Msg("refresh ranking lock")
			}
		}
	}
}

func (run *rankingRun) scoreOne(ctx context.Context, profile adapter.JobProfile, a *model.Applicant) {
	res, err := run.score(ctx, profile, a)
	now := run.uc.now()
	if err == nil {
		err = run.uc.Applicants.SaveScore(ctx, repository.NoTX, a.ID, res.Score, &res.Analysis, now)
	}
	if err != nil {
		run.log.Warn().Err(err).Str("applicant_id", a.ID).Str("candidate_id", a.CandidateID).Msg("applicant not scored")
		if ferr := run.uc.Applicants.RecordScoreFailure(ctx, repository.NoTX, a.ID, truncate(err.Error(), 500)); ferr != nil &&
			!errors.Is(ferr, domain.ErrNotFound) {
			run.log.Warn().Err(ferr).Str("applicant_id", a.ID).Msg("record score failure")
		}
		metrics.IncRankedApplicant("failed")
	} else {
		metrics.IncRankedApplicant("scored")
	}

	run.mu.Lock()
	defer run.mu.Unlock()
	if err != nil {
		_ = run.task.RecordFailure(now)
	} else {
		_ = run.task.RecordSuccess(now)
		scored := *a
		analysis := res.Analysis
		scored.JobFitScore = res.Score
		scored.Analysis = &analysis
		scored.ScoreError = ""
		scored.ScoredAt = &now
		run.scored = append(run.scored, &scored)
	}
	if cerr := run.uc.Cache.SetRankingStatus(ctx, run.task.Clone()); cerr != nil {
		run.log.Debug().Err(cerr).Msg("write ranking progress")
	}
}

func (run *rankingRun) score(ctx context.Context, profile adapter.JobProfile, a *model.Applicant) (*model.ScoreResult, error) {
	text, err := run.resumeText(ctx, a)
	if err != nil {
		return nil, err
	}
	cctx, cancel := context.WithTimeout(ctx, run.uc.cfg.ScoreTimeout)
	defer cancel()
	return run.uc.Scorer.Score(cctx, adapter.ScoreRequest{
		Job: profile,
		Candidate: adapter.CandidateResume{
			CandidateID: a.CandidateID,
			Name:        a.CandidateName,
			Content:     text,
		},
	})
}

// resumeText prefers the parsed text on the resume row and falls back to the
// parsed rendition in the blob store.
func (run *rankingRun) resumeText(ctx context.Context, a *model.Applicant) (string, error) {
	if a.ResumeID == "" {
		return "", fmt.Errorf("%w: applicant %s has no resume", domain.ErrResumeUnavailable, a.ID)
	}
	res, err := run.uc.Resumes.FindByID(ctx, repository.NoTX, a.ResumeID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrResumeUnavailable, err)
	}
	if strings.TrimSpace(res.ParsedText) != "" {
		return res.ParsedText, nil
	}
	if run.uc.Blobs != nil {
		b, err := run.uc.Blobs.Get(ctx, parsedResumeKey(res.ID))
		if err == nil && len(b) > 0 {
			return string(b), nil
		}
	}
	return "", fmt.Errorf("%w: resume %s not parsed", domain.ErrResumeUnavailable, res.ID)
}

// complete records the finished run. A run whose job was claimed by a newer
// run in the meantime is failed instead.
func (run *rankingRun) complete(ctx context.Context) {
	now := run.uc.now()
	err := run.uc.Jobs.MarkRankingCompleted(ctx, repository.NoTX, run.job.ID, run.taskID(), now)
	if errors.Is(err, domain.ErrRankingSuperseded) || errors.Is(err, domain.ErrNotFound) {
		run.fail(ctx, reasonSuperseded)
		return
	}
	if err != nil {
		run.log.Error().Err(err).Msg("mark ranking completed")
		run.fail(ctx, "could not record ranking completion")
		return
	}

	run.mu.Lock()
	_ = run.task.Complete(now)
	run.task.HasCachedResults = true
	snap := run.task.Clone()
	results := model.BuildResults(run.job.ID, snap.TaskID, snap.Total, run.scored, now)
	run.mu.Unlock()
	results.JobTitle = run.job.Title

	if err := run.uc.Cache.SetResults(ctx, results); err != nil {
		snap.HasCachedResults = false
		run.log.Warn().Err(err).Msg("write ranking results")
	}
	if err := run.uc.Cache.SetRankingStatus(ctx, snap); err != nil {
		run.log.Warn().Err(err).Msg("write completed status")
	}
	run.publish(ctx, snap)

	metrics.IncRankingRun("completed")
	metrics.ObserveRankingRun("completed", now.Sub(run.startedAt))
	run.log.Info().Int("total", snap.Total).Int("scored", snap.Processed).Int("failed", snap.Failed).
		Dur("elapsed", now.Sub(run.startedAt)).Msg("ranking run completed")
}

// fail records a fatal run outcome. Scores already written stay in place.
func (run *rankingRun) fail(ctx context.Context, reason string) {
	now := run.uc.now()
	superseded := false
	err := run.uc.Jobs.MarkRankingFailed(ctx, repository.NoTX, run.job.ID, run.taskID(), reason, now)
	switch {
	case errors.Is(err, domain.ErrRankingSuperseded), errors.Is(err, domain.ErrNotFound):
		superseded = true
	case err != nil:
		run.log.Error().Err(err).Msg("mark ranking failed")
	}

	run.mu.Lock()
	_ = run.task.Fail(reason, now)
	snap := run.task.Clone()
	run.mu.Unlock()

	// a newer run owns the cache record once the job has moved on
	if !superseded || run.ownsCacheRecord(ctx) {
		if err := run.uc.Cache.SetRankingStatus(ctx, snap); err != nil {
			run.log.Warn().Err(err).Msg("write failed status")
		}
	}
	run.publish(ctx, snap)

	metrics.IncRankingRun("failed")
	metrics.ObserveRankingRun("failed", now.Sub(run.startedAt))
	run.log.Error().Str("reason", reason).Int("scored", snap.Processed).Int("failed", snap.Failed).Msg("ranking run failed")
}

func (run *rankingRun) ownsCacheRecord(ctx context.Context) bool {
	cur, err := run.uc.Cache.GetRankingStatus(ctx, run.job.ID)
	return err == nil && cur.TaskID == run.taskID()
}

func (run *rankingRun) taskID() string {
	run.mu.Lock()
	defer run.mu.Unlock()
	return run.task.TaskID
}

func (run *rankingRun) publish(ctx context.Context, task *model.RankingTask) {
	if run.uc.Events == nil {
		return
	}
	if err := run.uc.Events.PublishRankingStatus(ctx, task); err != nil {
		run.log.Warn().Err(err).Msg("publish ranking status")
	}
}

func jobProfile(j *model.Job) adapter.JobProfile {
	return adapter.JobProfile{
		ID:           j.ID,
		Title:        j.Title,
		Description:  j.Description,
		Requirements: j.Requirements,
		Skills:       j.Skills,
	}
}

// truncate caps s at n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
