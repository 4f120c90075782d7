package model

import "time"

// CategoryScore is one scored dimension of an analysis.
type CategoryScore struct {
	Score     float64  `json:"score"`
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
}

// Analysis is the structured skill analysis produced by the scoring service.
type Analysis struct {
	Technical       CategoryScore `json:"technical"`
	Experience      CategoryScore `json:"experience"`
	Education       CategoryScore `json:"education"`
	SoftSkillsScore float64       `json:"softSkillsScore"`
	Summary         string        `json:"summary,omitempty"`
}

// Applicant links a candidate and their resume to a job.
type Applicant struct {
	ID            string
	JobID         string
	CandidateID   string
	CandidateName string
	ResumeID      string
	AppliedAt     time.Time

	JobFitScore float64
	Analysis    *Analysis
	ScoreError  string
	ScoredAt    *time.Time
}

// Ranked reports whether the applicant carries a score from a ranking run.
func (a *Applicant) Ranked() bool {
	return a.JobFitScore > 0 && a.Analysis != nil
}

// ScoreResult is what the scoring service returns for one applicant.
type ScoreResult struct {
	CandidateID string
	Score       float64
	Analysis    Analysis
}
