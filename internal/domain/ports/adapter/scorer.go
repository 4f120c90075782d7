package adapter

import (
	"context"

	"hirehub-ranking/internal/domain/model"
)

// JobProfile is the job side of a scoring request.
type JobProfile struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	Skills       []string `json:"skills"`
}

// CandidateResume is the candidate side of a scoring request.
type CandidateResume struct {
	CandidateID string `json:"candidateId"`
	Name        string `json:"name"`
	Content     string `json:"content"`
}

type ScoreRequest struct {
	Job       JobProfile
	Candidate CandidateResume
}

// Scorer is the port to the external scoring service. Any error or a
// response that does not parse into a ScoreResult is a failed call.
type Scorer interface {
	Name() string
	Score(ctx context.Context, req ScoreRequest) (*model.ScoreResult, error)
}
