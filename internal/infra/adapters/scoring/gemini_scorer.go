package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"hirehub-ranking/internal/domain"
	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/domain/ports/adapter"
	"hirehub-ranking/internal/infra/metrics"
)

var _ adapter.Scorer = (*GeminiScorer)(nil)

type GeminiScorer struct {
	client *genai.Client
	model  string
	budget *TokenBudget
}

// NewGeminiScorer creates a Gemini scorer using the official SDK.
func NewGeminiScorer(ctx context.Context, apiKey, baseURL, model string, budget *TokenBudget) (*GeminiScorer, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if strings.TrimSpace(model) == "" {
		model = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiScorer{client: c, model: model, budget: budget}, nil
}

func (g *GeminiScorer) Name() string { return "gemini" }

func (g *GeminiScorer) Score(ctx context.Context, req adapter.ScoreRequest) (*model.ScoreResult, error) {
	start := time.Now()
	res, err := g.score(ctx, req)
	observe(g.Name(), g.model, start, err)
	return res, err
}

func (g *GeminiScorer) score(ctx context.Context, req adapter.ScoreRequest) (*model.ScoreResult, error) {
	resume, _ := g.budget.Truncate(req.Candidate.Content)
	prompt := buildUserPrompt(req.Job, resume)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0),
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, &StatusError{Code: apiErr.Code, Body: apiErr.Message}
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrScoringFailed, err)
	}
	if resp != nil && resp.UsageMetadata != nil {
		metrics.AddPromptTokens(g.Name(), g.model, int(resp.UsageMetadata.PromptTokenCount))
	}
	text := ""
	if resp != nil {
		text = resp.Text()
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty gemini response", domain.ErrInvalidScoreOutput)
	}
	return parseAnalysis([]byte(text), req.Candidate.CandidateID)
}
