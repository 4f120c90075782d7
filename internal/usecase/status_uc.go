package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"hirehub-ranking/internal/domain"
	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/domain/ports/repository"
	"hirehub-ranking/internal/infra/logging"
	"hirehub-ranking/internal/infra/metrics"
)

// Compile-time check
var _ StatusUseCase = (*statusUC)(nil)

// StatusUseCase answers polling clients. The cache is consulted first; when it
// misses or is unavailable the answer is derived from the store.
type StatusUseCase interface {
	GetRankingStatus(ctx context.Context, recruiterID, jobID, taskID string) (*model.RankingTask, error)
	GetResults(ctx context.Context, recruiterID, jobID string) (*model.RankingResults, error)
	GetResumeStatus(ctx context.Context, userID, resumeID string) (*model.ResumeProcessingStatus, error)
}

type statusUC struct {
	jobs       repository.JobRepository
	applicants repository.ApplicantRepository
	resumes    repository.ResumeRepository
	cache      repository.StatusCache
	log        *zerolog.Logger
}

func NewStatusUseCase(jobs repository.JobRepository, applicants repository.ApplicantRepository,
	resumes repository.ResumeRepository, cache repository.StatusCache, logger *zerolog.Logger) *statusUC {
	l := logger.With().Str("component", "StatusUC").Logger()
	return &statusUC{jobs: jobs, applicants: applicants, resumes: resumes, cache: cache, log: &l}
}

func (s *statusUC) ownedJob(ctx context.Context, recruiterID, jobID string) (*model.Job, error) {
	recruiterID, jobID = strings.TrimSpace(recruiterID), strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if recruiterID == "" {
		return nil, domain.ErrUnauthorized
	}
	job, err := s.jobs.FindByID(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, err
	}
	if !job.OwnedBy(recruiterID) {
		return nil, domain.ErrUnauthorized
	}
	return job, nil
}

func (s *statusUC) GetRankingStatus(ctx context.Context, recruiterID, jobID, taskID string) (*model.RankingTask, error) {
	defer logging.TraceDuration(s.log, "StatusUC.GetRankingStatus")()

	job, err := s.ownedJob(ctx, recruiterID, jobID)
	if err != nil {
		return nil, err
	}
	taskID = strings.TrimSpace(taskID)

	cached, cerr := s.cache.GetRankingStatus(ctx, job.ID)
	if cerr != nil && !errors.Is(cerr, domain.ErrCacheMiss) {
		logging.With(logging.WithJobID(ctx, job.ID), s.log).Warn().Err(cerr).Msg("status cache unavailable; answering from store")
	}
	if cerr == nil {
		if taskID != "" && cached.TaskID != taskID {
			return nil, domain.ErrTaskNotFound
		}
		metrics.IncStatusRead(model.SourceCache)
		return cached, nil
	}

	if taskID != "" && job.RankingTaskID != taskID {
		return nil, domain.ErrTaskNotFound
	}
	task, err := s.deriveFromStore(ctx, job)
	if err != nil {
		return nil, err
	}
	metrics.IncStatusRead(model.SourceStore)
	return task, nil
}

// deriveFromStore rebuilds a status record from the job row and applicant counts.
func (s *statusUC) deriveFromStore(ctx context.Context, job *model.Job) (*model.RankingTask, error) {
	total, err := s.applicants.CountByJob(ctx, repository.NoTX, job.ID)
	if err != nil {
		return nil, err
	}
	ranked, err := s.applicants.CountScoredByJob(ctx, repository.NoTX, job.ID)
	if err != nil {
		return nil, err
	}
	status := job.RankingStatus
	if status == "" {
		status = model.RankingStatusNotStarted
	}
	task := &model.RankingTask{
		TaskID:       job.RankingTaskID,
		JobID:        job.ID,
		Status:       status,
		Progress:     model.Progress(ranked, total),
		Total:        total,
		Processed:    ranked,
		Error:        job.RankingError,
		UpdatedAt:    job.UpdatedAt,
		LastRankedAt: job.LastRankedAt,
		Source:       model.SourceStore,
	}
	if job.RankingStartedAt != nil {
		task.StartedAt = *job.RankingStartedAt
	}
	if _, err := s.cache.GetResults(ctx, job.ID); err == nil {
		task.HasCachedResults = true
	}
	return task, nil
}

func (s *statusUC) GetResults(ctx context.Context, recruiterID, jobID string) (*model.RankingResults, error) {
	defer logging.TraceDuration(s.log, "StatusUC.GetResults")()

	job, err := s.ownedJob(ctx, recruiterID, jobID)
	if err != nil {
		return nil, err
	}
	if res, err := s.cache.GetResults(ctx, job.ID); err == nil {
		res.JobTitle = job.Title
		return res, nil
	}

	ranked, err := s.applicants.ListRankedByJob(ctx, repository.NoTX, job.ID)
	if err != nil {
		return nil, err
	}
	total, err := s.applicants.CountByJob(ctx, repository.NoTX, job.ID)
	if err != nil {
		return nil, err
	}
	res := model.BuildResults(job.ID, job.RankingTaskID, total, ranked, job.UpdatedAt)
	if job.LastRankedAt != nil {
		res.RankedAt = *job.LastRankedAt
	}
	res.JobTitle = job.Title
	return res, nil
}

func (s *statusUC) GetResumeStatus(ctx context.Context, userID, resumeID string) (*model.ResumeProcessingStatus, error) {
	defer logging.TraceDuration(s.log, "StatusUC.GetResumeStatus")()

	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUnauthorized
	}
	resumeID = strings.TrimSpace(resumeID)
	if resumeID == "" {
		return nil, domain.ErrInvalidArgument
	}
	st, err := s.cache.GetResumeStatus(ctx, resumeID)
	if err == nil {
		metrics.IncStatusRead(model.SourceCache)
		return st, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		s.log.Warn().Err(err).Str("resume_id", resumeID).Msg("status cache unavailable; answering from store")
	}

	resume, err := s.resumes.FindByID(ctx, repository.NoTX, resumeID)
	if err != nil {
		return nil, err
	}
	metrics.IncStatusRead(model.SourceStore)
	return model.StatusFromResume(resume), nil
}
