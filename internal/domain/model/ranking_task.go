package model

import (
	"math"
	"time"

	"hirehub-ranking/internal/domain"
)

type RankingStatus string

const (
	RankingStatusNotStarted RankingStatus = "not_started"
	RankingStatusProcessing RankingStatus = "processing"
	RankingStatusCompleted  RankingStatus = "completed"
	RankingStatusFailed     RankingStatus = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s RankingStatus) Terminal() bool {
	return s == RankingStatusCompleted || s == RankingStatusFailed
}

// ParseRankingStatus maps a stored value to a status; empty or unknown
// values are treated as not_started.
func ParseRankingStatus(s string) RankingStatus {
	switch RankingStatus(s) {
	case RankingStatusProcessing, RankingStatusCompleted, RankingStatusFailed:
		return RankingStatus(s)
	default:
		return RankingStatusNotStarted
	}
}

// Where a status record was read from.
const (
	SourceCache = "cache"
	SourceStore = "store"
)

// RankingTask is the progress record of one ranking run for one job.
// It is what the status cache holds and what the status query returns.
type RankingTask struct {
	TaskID           string        `json:"taskId,omitempty"`
	JobID            string        `json:"jobId"`
	Status           RankingStatus `json:"status"`
	Progress         int           `json:"progress"`
	Total            int           `json:"total"`
	Processed        int           `json:"processed"`
	Failed           int           `json:"failed"`
	Error            string        `json:"error,omitempty"`
	StartedAt        time.Time     `json:"startedAt,omitempty"`
	UpdatedAt        time.Time     `json:"updatedAt"`
	LastRankedAt     *time.Time    `json:"lastRankedAt,omitempty"`
	HasCachedResults bool          `json:"hasCachedResults"`
	Source           string        `json:"source,omitempty"`
}

// NewRankingTask creates the initial processing record of a run.
func NewRankingTask(taskID, jobID string, total int, now time.Time) (*RankingTask, error) {
	if taskID == "" || jobID == "" || total < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &RankingTask{
		TaskID:    taskID,
		JobID:     jobID,
		Status:    RankingStatusProcessing,
		Total:     total,
		StartedAt: now,
		UpdatedAt: now,
		Source:    SourceCache,
	}, nil
}

// RecordSuccess counts one scored applicant and moves progress forward.
func (t *RankingTask) RecordSuccess(now time.Time) error {
	if t.Status.Terminal() {
		return domain.ErrTerminalStatus
	}
	if t.Processed+t.Failed >= t.Total {
		return domain.ErrInvalidArgument
	}
	t.Processed++
	if p := Progress(t.Processed, t.Total); p > t.Progress {
		t.Progress = p
	}
	t.UpdatedAt = now
	return nil
}

// RecordFailure counts one applicant whose scoring failed. Progress is unchanged.
func (t *RankingTask) RecordFailure(now time.Time) error {
	if t.Status.Terminal() {
		return domain.ErrTerminalStatus
	}
	if t.Processed+t.Failed >= t.Total {
		return domain.ErrInvalidArgument
	}
	t.Failed++
	t.UpdatedAt = now
	return nil
}

// Complete marks the run completed; progress becomes 100.
func (t *RankingTask) Complete(now time.Time) error {
	if t.Status.Terminal() {
		return domain.ErrTerminalStatus
	}
	t.Status = RankingStatusCompleted
	t.Progress = 100
	t.Error = ""
	t.UpdatedAt = now
	ranked := now
	t.LastRankedAt = &ranked
	return nil
}

// Fail marks the run failed, keeping the progress made so far.
func (t *RankingTask) Fail(msg string, now time.Time) error {
	if t.Status.Terminal() {
		return domain.ErrTerminalStatus
	}
	t.Status = RankingStatusFailed
	t.Error = msg
	t.UpdatedAt = now
	return nil
}

// Clone returns a copy safe to hand to another goroutine.
func (t *RankingTask) Clone() *RankingTask {
	cp := *t
	if t.LastRankedAt != nil {
		v := *t.LastRankedAt
		cp.LastRankedAt = &v
	}
	return &cp
}

// Progress returns round(done/total*100) clamped to [0,100]; zero total yields 0.
func Progress(done, total int) int {
	if total <= 0 || done <= 0 {
		return 0
	}
	p := int(math.Round(float64(done) / float64(total) * 100))
	if p > 100 {
		return 100
	}
	return p
}
