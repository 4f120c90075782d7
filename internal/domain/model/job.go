package model

import "time"

// Job is the posting whose applicants are ranked. The job record itself is
// owned elsewhere; the pipeline only reads it and writes the ranking columns.
type Job struct {
	ID           string
	RecruiterID  string
	Title        string
	Description  string
	Requirements []string
	Skills       []string

	RankingStatus      RankingStatus
	RankingTaskID      string
	RankingStartedAt   *time.Time
	RankingCompletedAt *time.Time
	LastRankedAt       *time.Time
	RankingError       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnedBy reports whether recruiterID may rank or inspect this job.
func (j *Job) OwnedBy(recruiterID string) bool {
	return recruiterID != "" && j.RecruiterID == recruiterID
}

// Priority mirrors how urgent a run is given the size of the applicant pool:
// small pools are cheap and get answered first.
func Priority(applicants int) int {
	switch {
	case applicants <= 10:
		return 10
	case applicants <= 50:
		return 8
	case applicants <= 100:
		return 5
	default:
		return 1
	}
}
