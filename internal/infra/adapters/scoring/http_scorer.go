package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"hirehub-ranking/internal/domain"
	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.Scorer = (*HTTPScorer)(nil)

// HTTPScorer calls a dedicated resume analysis service over JSON/HTTP.
type HTTPScorer struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPScorer(endpoint, apiKey string, timeout time.Duration) (*HTTPScorer, error) {
	if endpoint == "" {
		return nil, errors.New("scoring endpoint empty")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPScorer{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

func (s *HTTPScorer) Name() string { return "http" }

type analyzeResume struct {
	CandidateID string            `json:"candidateId"`
	Name        string            `json:"name"`
	Content     string            `json:"content"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type analyzeRequest struct {
	JobDescription string          `json:"job_description"`
	Requirements   []string        `json:"requirements"`
	Skills         []string        `json:"skills"`
	Resumes        []analyzeResume `json:"resumes"`
}

type analyzeResponse struct {
	Results []json.RawMessage `json:"results"`
}

func (s *HTTPScorer) Score(ctx context.Context, req adapter.ScoreRequest) (*model.ScoreResult, error) {
	start := time.Now()
	res, err := s.score(ctx, req)
	observe(s.Name(), "", start, err)
	return res, err
}

func (s *HTTPScorer) score(ctx context.Context, req adapter.ScoreRequest) (*model.ScoreResult, error) {
	body := analyzeRequest{
		JobDescription: req.Job.Description,
		Requirements:   nonNil(req.Job.Requirements),
		Skills:         nonNil(req.Job.Skills),
		Resumes: []analyzeResume{{
			CandidateID: req.Candidate.CandidateID,
			Name:        req.Candidate.Name,
			Content:     req.Candidate.Content,
			Metadata:    map[string]string{"jobId": req.Job.ID, "jobTitle": req.Job.Title},
		}},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrScoringFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(snippet)}
	}

	var payload analyzeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidScoreOutput, err)
	}
	for _, raw := range payload.Results {
		var head struct {
			CandidateID string `json:"candidateId"`
		}
		_ = json.Unmarshal(raw, &head)
		if head.CandidateID == "" || head.CandidateID == req.Candidate.CandidateID {
			return parseAnalysis(raw, req.Candidate.CandidateID)
		}
	}
	return nil, fmt.Errorf("%w: no result for candidate %s", domain.ErrInvalidScoreOutput, req.Candidate.CandidateID)
}

// StatusError is a non-2xx answer from a scoring backend.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("scoring http %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return domain.ErrScoringFailed }
