package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"hirehub-ranking/internal/domain"
	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/domain/ports/adapter"
	"hirehub-ranking/internal/domain/ports/repository"
	"hirehub-ranking/internal/infra/logging"
	"hirehub-ranking/internal/infra/metrics"
)

// Compile-time check
var _ ResumeUseCase = (*resumeUC)(nil)

// Progress checkpoints of a resume parse.
const (
	resumeStageLoaded = 10
	resumeStageRead   = 30
	resumeStageParsed = 60
	resumeStageStored = 80
)

type ResumeUseCase interface {
	// QueueResume parses a candidate's uploaded resume in the background and
	// returns the task id to poll. A resume already parsed is not redone.
	QueueResume(ctx context.Context, candidateID, resumeID string) (string, error)
}

type resumeUC struct {
	resumes repository.ResumeRepository
	cache   repository.StatusCache
	blobs   adapter.BlobStore
	parser  adapter.ResumeParser
	runner  Submitter
	log     *zerolog.Logger
	now     func() time.Time
}

func NewResumeUseCase(resumes repository.ResumeRepository, cache repository.StatusCache, blobs adapter.BlobStore,
	parser adapter.ResumeParser, runner Submitter, logger *zerolog.Logger) *resumeUC {
	l := logger.With().Str("component", "ResumeUC").Logger()
	return &resumeUC{resumes: resumes, cache: cache, blobs: blobs, parser: parser, runner: runner, log: &l, now: time.Now}
}

func (u *resumeUC) QueueResume(ctx context.Context, candidateID, resumeID string) (string, error) {
	defer logging.TraceDuration(u.log, "ResumeUC.QueueResume")()

	candidateID, resumeID = strings.TrimSpace(candidateID), strings.TrimSpace(resumeID)
	if candidateID == "" {
		return "", domain.ErrUnauthorized
	}
	if resumeID == "" {
		return "", domain.ErrInvalidArgument
	}
	if u.blobs == nil || u.parser == nil {
		return "", fmt.Errorf("resume processing not configured: %w", domain.ErrResumeUnavailable)
	}
	resume, err := u.resumes.FindByID(ctx, repository.NoTX, resumeID)
	if err != nil {
		return "", err
	}
	if resume.CandidateID != candidateID {
		return "", domain.ErrForbidden
	}

	if resume.ProcessingStatus == model.ResumeStatusCompleted {
		if st, err := u.cache.GetResumeStatus(ctx, resumeID); err == nil && st.TaskID != "" {
			return st.TaskID, nil
		}
		return ulid.Make().String(), nil
	}
	if st, err := u.cache.GetResumeStatus(ctx, resumeID); err == nil && st.Status == model.ResumeStatusProcessing {
		return st.TaskID, nil
	}

	taskID := ulid.Make().String()
	now := u.now()
	st := model.NewResumeProcessingStatus(taskID, resumeID, now)
	if err := u.cache.SetResumeStatus(ctx, st); err != nil {
		u.log.Warn().Err(err).Str("resume_id", resumeID).Msg("write initial resume status")
	}
	if err := u.resumes.UpdateProcessing(ctx, repository.NoTX, resumeID, model.ResumeStatusProcessing, "", now); err != nil {
		return "", fmt.Errorf("mark resume processing: %w", err)
	}

	job := &resumeJob{uc: u, resume: resume, status: st,
		log: u.log.With().Str("resume_id", resumeID).Str("task_id", taskID).Logger()}
	if err := u.runner.Submit(job.execute); err != nil {
		job.fail(context.WithoutCancel(ctx), "resume queue full")
		return "", fmt.Errorf("submit resume parse: %w", domain.ErrQueueFull)
	}
	return taskID, nil
}

type resumeJob struct {
	uc     *resumeUC
	resume *model.Resume
	log    zerolog.Logger

	mu     sync.Mutex
	status *model.ResumeProcessingStatus
}

func (j *resumeJob) advance(ctx context.Context, progress int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.status.Advance(progress, j.uc.now()); err != nil {
		return
	}
	cp := *j.status
	if err := j.uc.cache.SetResumeStatus(ctx, &cp); err != nil {
		j.log.Debug().Err(err).Int("progress", progress).Msg("write resume progress")
	}
}

func (j *resumeJob) execute(ctx context.Context) error {
	r := j.resume
	j.advance(ctx, resumeStageLoaded)

	if r.StorageKey == "" {
		j.fail(ctx, "resume file missing")
		return domain.ErrResumeUnavailable
	}
	data, err := j.uc.blobs.Get(ctx, r.StorageKey)
	if err != nil {
		j.fail(ctx, "could not read resume file")
		return err
	}
	j.advance(ctx, resumeStageRead)

	text, err := j.uc.parser.Parse(ctx, r.FileName, data)
	if err != nil {
		j.fail(ctx, "could not parse resume")
		return err
	}
	j.advance(ctx, resumeStageParsed)

	now := j.uc.now()
	if err := j.uc.resumes.SaveParsedText(ctx, repository.NoTX, r.ID, text, now); err != nil {
		j.fail(ctx, "could not store parsed resume")
		return err
	}
	if err := j.uc.blobs.Put(ctx, parsedResumeKey(r.ID), []byte(text), "text/markdown"); err != nil {
		j.log.Warn().Err(err).Msg("store parsed resume copy")
	}
	j.advance(ctx, resumeStageStored)

	if err := j.uc.resumes.UpdateProcessing(ctx, repository.NoTX, r.ID, model.ResumeStatusCompleted, "", j.uc.now()); err != nil {
		j.fail(ctx, "could not record resume completion")
		return err
	}
	j.mu.Lock()
	_ = j.status.Complete(j.uc.now())
	cp := *j.status
	j.mu.Unlock()
	if err := j.uc.cache.SetResumeStatus(ctx, &cp); err != nil {
		j.log.Warn().Err(err).Msg("write completed resume status")
	}
	metrics.IncResumeProcessed(string(model.ResumeStatusCompleted))
	j.log.Info().Int("chars", len(text)).Msg("resume parsed")
	return nil
}

func (j *resumeJob) fail(ctx context.Context, reason string) {
	now := j.uc.now()
	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), terminalWriteTimeout)
	defer cancel()

	if err := j.uc.resumes.UpdateProcessing(tctx, repository.NoTX, j.resume.ID, model.ResumeStatusFailed, reason, now); err != nil {
		j.log.Error().Err(err).Msg("mark resume failed")
	}
	j.mu.Lock()
	_ = j.status.Fail(reason, now)
	cp := *j.status
	j.mu.Unlock()
	if err := j.uc.cache.SetResumeStatus(tctx, &cp); err != nil {
		j.log.Warn().Err(err).Msg("write failed resume status")
	}
	metrics.IncResumeProcessed(string(model.ResumeStatusFailed))
	j.log.Error().Str("reason", reason).Msg("resume processing failed")
}
