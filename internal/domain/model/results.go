package model

import (
	"sort"
	"time"
)

type RankedEntry struct {
	ApplicantID   string    `json:"applicantId"`
	CandidateID   string    `json:"candidateId"`
	CandidateName string    `json:"candidateName"`
	Score         float64   `json:"score"`
	Analysis      *Analysis `json:"analysis,omitempty"`
	AppliedAt     time.Time `json:"appliedAt"`
}

// RankingResults is the ordered outcome of a completed run.
type RankingResults struct {
	JobID     string        `json:"jobId"`
	JobTitle  string        `json:"jobTitle,omitempty"`
	TaskID    string        `json:"taskId,omitempty"`
	RankedAt  time.Time     `json:"rankedAt"`
	Total     int           `json:"total"`
	Processed int           `json:"processed"`
	Entries   []RankedEntry `json:"entries"`
}

// Fresh reports whether the results are younger than maxAge.
func (r *RankingResults) Fresh(now time.Time, maxAge time.Duration) bool {
	return maxAge > 0 && !r.RankedAt.IsZero() && now.Sub(r.RankedAt) < maxAge
}

// BuildResults collects the scored applicants, best first. Ties keep the
// earlier application first.
func BuildResults(jobID, taskID string, total int, applicants []*Applicant, now time.Time) *RankingResults {
	entries := make([]RankedEntry, 0, len(applicants))
	for _, a := range applicants {
		if !a.Ranked() {
			continue
		}
		entries = append(entries, RankedEntry{
			ApplicantID:   a.ID,
			CandidateID:   a.CandidateID,
			CandidateName: a.CandidateName,
			Score:         a.JobFitScore,
			Analysis:      a.Analysis,
			AppliedAt:     a.AppliedAt,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].AppliedAt.Before(entries[j].AppliedAt)
	})
	return &RankingResults{
		JobID:     jobID,
		TaskID:    taskID,
		RankedAt:  now,
		Total:     total,
		Processed: len(entries),
		Entries:   entries,
	}
}
