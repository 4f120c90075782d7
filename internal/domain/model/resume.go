package model

import (
	"time"

	"hirehub-ranking/internal/domain"
)

type ResumeStatus string

const (
	ResumeStatusUnknown    ResumeStatus = "unknown"
	ResumeStatusProcessing ResumeStatus = "processing"
	ResumeStatusCompleted  ResumeStatus = "completed"
	ResumeStatusFailed     ResumeStatus = "failed"
)

func (s ResumeStatus) Terminal() bool {
	return s == ResumeStatusCompleted || s == ResumeStatusFailed
}

// ParseResumeStatus maps a stored value to a status, defaulting to unknown.
func ParseResumeStatus(s string) ResumeStatus {
	switch ResumeStatus(s) {
	case ResumeStatusProcessing, ResumeStatusCompleted, ResumeStatusFailed:
		return ResumeStatus(s)
	default:
		return ResumeStatusUnknown
	}
}

type Resume struct {
	ID               string
	CandidateID      string
	FileName         string
	StorageKey       string
	ParsedText       string
	ProcessingStatus ResumeStatus
	ProcessingError  string
	LastModified     time.Time
}

// ResumeProcessingStatus is the progress record of a resume parse.
type ResumeProcessingStatus struct {
	TaskID    string       `json:"taskId,omitempty"`
	ResumeID  string       `json:"resumeId"`
	Status    ResumeStatus `json:"status"`
	Progress  int          `json:"progress"`
	Timestamp time.Time    `json:"timestamp"`
	Error     string       `json:"error,omitempty"`
}

func NewResumeProcessingStatus(taskID, resumeID string, now time.Time) *ResumeProcessingStatus {
	return &ResumeProcessingStatus{
		TaskID:    taskID,
		ResumeID:  resumeID,
		Status:    ResumeStatusProcessing,
		Timestamp: now,
	}
}

// Advance moves progress forward. Values below the current progress are ignored.
func (s *ResumeProcessingStatus) Advance(progress int, now time.Time) error {
	if s.Status.Terminal() {
		return domain.ErrTerminalStatus
	}
	if progress < 0 || progress > 100 {
		return domain.ErrInvalidArgument
	}
	if progress > s.Progress {
		s.Progress = progress
	}
	s.Timestamp = now
	return nil
}

func (s *ResumeProcessingStatus) Complete(now time.Time) error {
	if s.Status.Terminal() {
		return domain.ErrTerminalStatus
	}
	s.Status = ResumeStatusCompleted
	s.Progress = 100
	s.Error = ""
	s.Timestamp = now
	return nil
}

func (s *ResumeProcessingStatus) Fail(msg string, now time.Time) error {
	if s.Status.Terminal() {
		return domain.ErrTerminalStatus
	}
	s.Status = ResumeStatusFailed
	s.Error = msg
	s.Timestamp = now
	return nil
}

// StatusFromResume derives a status record from the stored resume row.
func StatusFromResume(r *Resume) *ResumeProcessingStatus {
	st := r.ProcessingStatus
	if st == "" {
		st = ResumeStatusUnknown
	}
	progress := 0
	if st == ResumeStatusCompleted {
		progress = 100
	}
	return &ResumeProcessingStatus{
		ResumeID:  r.ID,
		Status:    st,
		Progress:  progress,
		Timestamp: r.LastModified,
		Error:     r.ProcessingError,
	}
}
