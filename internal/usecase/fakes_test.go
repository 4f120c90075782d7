//go:build !integration

package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"hirehub-ranking/internal/domain"
	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/domain/ports/adapter"
	"hirehub-ranking/internal/domain/ports/repository"
)

// fakeJobRepo is an in-memory JobRepository with the same ownership guard as
// the postgres implementation.
type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*model.Job
}

func newFakeJobRepo(jobs ...*model.Job) *fakeJobRepo {
	r := &fakeJobRepo{jobs: map[string]*model.Job{}}
	for _, j := range jobs {
		r.jobs[j.ID] = j
	}
	return r
}

func (r *fakeJobRepo) get(id string) *model.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.jobs[id]
	return &cp
}

func (r *fakeJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (r *fakeJobRepo) MarkRankingStarted(ctx context.Context, tx repository.Tx, jobID, taskID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	j.RankingStatus = model.RankingStatusProcessing
	j.RankingTaskID = taskID
	j.RankingStartedAt = &at
	j.RankingError = ""
	return nil
}

func (r *fakeJobRepo) MarkRankingCompleted(ctx context.Context, tx repository.Tx, jobID, taskID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok || j.RankingTaskID != taskID {
		return domain.ErrRankingSuperseded
	}
	j.RankingStatus = model.RankingStatusCompleted
	j.RankingCompletedAt = &at
	j.LastRankedAt = &at
	j.RankingError = ""
	return nil
}

func (r *fakeJobRepo) MarkRankingFailed(ctx context.Context, tx repository.Tx, jobID, taskID, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok || j.RankingTaskID != taskID {
		return domain.ErrRankingSuperseded
	}
	j.RankingStatus = model.RankingStatusFailed
	j.RankingError = reason
	return nil
}

func (r *fakeJobRepo) ListStaleRankings(ctx context.Context, tx repository.Tx, startedBefore time.Time, limit int) ([]*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Job
	for _, j := range r.jobs {
		if j.RankingStatus == model.RankingStatusProcessing && j.RankingStartedAt != nil && j.RankingStartedAt.Before(startedBefore) {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeApplicantRepo struct {
	mu         sync.Mutex
	applicants []*model.Applicant
	saves      int
}

func newFakeApplicantRepo(as ...*model.Applicant) *fakeApplicantRepo {
	return &fakeApplicantRepo{applicants: as}
}

func (r *fakeApplicantRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.Applicant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Applicant
	for _, a := range r.applicants {
		if a.JobID == jobID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeApplicantRepo) CountByJob(ctx context.Context, tx repository.Tx, jobID string) (int, error) {
	as, _ := r.ListByJob(ctx, tx, jobID)
	return len(as), nil
}

func (r *fakeApplicantRepo) CountScoredByJob(ctx context.Context, tx repository.Tx, jobID string) (int, error) {
	as, _ := r.ListByJob(ctx, tx, jobID)
	n := 0
	for _, a := range as {
		if a.JobFitScore > 0 {
			n++
		}
	}
	return n, nil
}

func (r *fakeApplicantRepo) SaveScore(ctx context.Context, tx repository.Tx, applicantID string, score float64, analysis *model.Analysis, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.applicants {
		if a.ID == applicantID {
			a.JobFitScore = score
			cp := *analysis
			a.Analysis = &cp
			a.ScoreError = ""
			a.ScoredAt = &at
			r.saves++
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeApplicantRepo) RecordScoreFailure(ctx context.Context, tx repository.Tx, applicantID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.applicants {
		if a.ID == applicantID {
			a.ScoreError = reason
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeApplicantRepo) ClearScoreErrors(ctx context.Context, tx repository.Tx, jobID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.applicants {
		if a.JobID == jobID && a.ScoreError != "" {
			a.ScoreError = ""
			n++
		}
	}
	return n, nil
}

// fakeTx runs fn without a transaction handle.
type fakeTx struct{ calls int }

func (f *fakeTx) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	f.calls++
	return fn(ctx, nil)
}

func (r *fakeApplicantRepo) ListRankedByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.Applicant, error) {
	as, _ := r.ListByJob(ctx, tx, jobID)
	var out []*model.Applicant
	for _, a := range as {
		if a.Ranked() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeApplicantRepo) find(id string) *model.Applicant {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.applicants {
		if a.ID == id {
			cp := *a
			return &cp
		}
	}
	return nil
}

type fakeResumeRepo struct {
	mu      sync.Mutex
	resumes map[string]*model.Resume
}

func newFakeResumeRepo(rs ...*model.Resume) *fakeResumeRepo {
	r := &fakeResumeRepo{resumes: map[string]*model.Resume{}}
	for _, x := range rs {
		r.resumes[x.ID] = x
	}
	return r
}

func (r *fakeResumeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Resume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.resumes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *x
	return &cp, nil
}

func (r *fakeResumeRepo) UpdateProcessing(ctx context.Context, tx repository.Tx, id string, status model.ResumeStatus, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.resumes[id]
	if !ok {
		return domain.ErrNotFound
	}
	x.ProcessingStatus = status
	x.ProcessingError = reason
	x.LastModified = at
	return nil
}

func (r *fakeResumeRepo) SaveParsedText(ctx context.Context, tx repository.Tx, id, text string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.resumes[id]
	if !ok {
		return domain.ErrNotFound
	}
	x.ParsedText = text
	x.LastModified = at
	return nil
}

// fakeCache is an in-memory StatusCache. err, when set, is returned by every call.
type fakeCache struct {
	mu      sync.Mutex
	status  map[string]*model.RankingTask
	results map[string]*model.RankingResults
	resumes map[string]*model.ResumeProcessingStatus
	history []model.RankingTask
	writes  int
	err     error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		status:  map[string]*model.RankingTask{},
		results: map[string]*model.RankingResults{},
		resumes: map[string]*model.ResumeProcessingStatus{},
	}
}

func (c *fakeCache) SetRankingStatus(ctx context.Context, task *model.RankingTask) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	cp := task.Clone()
	c.status[task.JobID] = cp
	c.history = append(c.history, *cp)
	c.writes++
	return nil
}

func (c *fakeCache) GetRankingStatus(ctx context.Context, jobID string) (*model.RankingTask, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	t, ok := c.status[jobID]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	cp := t.Clone()
	cp.Source = model.SourceCache
	return cp, nil
}

func (c *fakeCache) DeleteRankingStatus(ctx context.Context, jobID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.status, jobID)
	return nil
}

func (c *fakeCache) SetResults(ctx context.Context, res *model.RankingResults) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	cp := *res
	c.results[res.JobID] = &cp
	return nil
}

func (c *fakeCache) GetResults(ctx context.Context, jobID string) (*model.RankingResults, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	r, ok := c.results[jobID]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	cp := *r
	return &cp, nil
}

func (c *fakeCache) SetResumeStatus(ctx context.Context, st *model.ResumeProcessingStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	cp := *st
	c.resumes[st.ResumeID] = &cp
	return nil
}

func (c *fakeCache) GetResumeStatus(ctx context.Context, resumeID string) (*model.ResumeProcessingStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	st, ok := c.resumes[resumeID]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	cp := *st
	return &cp, nil
}

func (c *fakeCache) ranking(jobID string) *model.RankingTask {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.status[jobID]; ok {
		return t.Clone()
	}
	return nil
}

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]string
	seq      int
	unlocked int
}

func newFakeLocker() *fakeLocker { return &fakeLocker{held: map[string]string{}} }

func (l *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", domain.ErrLockNotAcquired
	}
	l.seq++
	tok := "tok-" + string(rune('a'+l.seq))
	l.held[key] = tok
	return tok, nil
}

func (l *fakeLocker) Refresh(ctx context.Context, key, token string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] != token {
		return domain.ErrLockLost
	}
	return nil
}

func (l *fakeLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		l.unlocked++
	}
	return nil
}

func (l *fakeLocker) Held(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok, nil
}

// fakeScorer answers from a per-candidate table. A candidate listed in hang
// blocks until the call's context ends.
type fakeScorer struct {
	mu     sync.Mutex
	scores map[string]float64
	fail   map[string]error
	hang   map[string]bool
	calls  int
	active int
	peak   int
	delay  time.Duration
}

func (s *fakeScorer) Name() string { return "fake" }

func (s *fakeScorer) Score(ctx context.Context, req adapter.ScoreRequest) (*model.ScoreResult, error) {
	id := req.Candidate.CandidateID
	s.mu.Lock()
	s.calls++
	s.active++
	if s.active > s.peak {
		s.peak = s.active
	}
	hang, err, score := s.hang[id], s.fail[id], s.scores[id]
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
	}()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return &model.ScoreResult{
		CandidateID: id,
		Score:       score,
		Analysis: model.Analysis{
			Technical: model.CategoryScore{Score: score, Strengths: []string{"go"}, Gaps: []string{}},
			Summary:   "ok",
		},
	}, nil
}

type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeBlobs() *fakeBlobs { return &fakeBlobs{objects: map[string][]byte{}} }

func (b *fakeBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (b *fakeBlobs) Put(ctx context.Context, key string, data []byte, contentType string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

type fakeParser struct {
	text string
	err  error
}

func (p *fakeParser) Parse(ctx context.Context, fileName string, data []byte) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.text, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []model.RankingTask
}

func (p *fakePublisher) PublishRankingStatus(ctx context.Context, task *model.RankingTask) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *task.Clone())
	return nil
}

func (p *fakePublisher) Close() error { return nil }

// syncRunner runs submitted work inline so tests observe the terminal state
// right after StartRanking returns. full makes Submit reject.
type syncRunner struct {
	full bool
	ctx  context.Context
	errs []error
}

func (r *syncRunner) Submit(task func(ctx context.Context) error) error {
	if r.full {
		return domain.ErrQueueFull
	}
	ctx := r.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	r.errs = append(r.errs, task(ctx))
	return nil
}

// heldRunner keeps submitted work until release is called.
type heldRunner struct {
	mu    sync.Mutex
	tasks []func(ctx context.Context) error
}

func (r *heldRunner) Submit(task func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
	return nil
}

func (r *heldRunner) release(ctx context.Context) error {
	r.mu.Lock()
	tasks := r.tasks
	r.tasks = nil
	r.mu.Unlock()
	var errs []error
	for _, t := range tasks {
		errs = append(errs, t(ctx))
	}
	return errors.Join(errs...)
}
