package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"hirehub-ranking/internal/domain"
	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/domain/ports/adapter"
	"hirehub-ranking/internal/infra/metrics"
)

var _ adapter.Scorer = (*OpenAIScorer)(nil)

// OpenAIScorer scores with a Chat Completions model in JSON mode. It also
// serves OpenAI-compatible gateways through baseURL.
type OpenAIScorer struct {
	client openai.Client
	model  string
	budget *TokenBudget
}

func NewOpenAIScorer(apiKey, model, baseURL string, budget *TokenBudget) (*OpenAIScorer, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIScorer{
		client: openai.NewClient(opts...),
		model:  model,
		budget: budget,
	}, nil
}

func (o *OpenAIScorer) Name() string { return "openai" }

func (o *OpenAIScorer) Score(ctx context.Context, req adapter.ScoreRequest) (*model.ScoreResult, error) {
	start := time.Now()
	res, err := o.score(ctx, req)
	observe(o.Name(), o.model, start, err)
	return res, err
}

func (o *OpenAIScorer) score(ctx context.Context, req adapter.ScoreRequest) (*model.ScoreResult, error) {
	resume, _ := o.budget.Truncate(req.Candidate.Content)
	prompt := buildUserPrompt(req.Job, resume)
	metrics.AddPromptTokens(o.Name(), o.model, o.budget.Count(systemPrompt)+o.budget.Count(prompt))

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		},
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &StatusError{Code: apiErr.StatusCode, Body: apiErr.Message}
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrScoringFailed, err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: no completion choices returned", domain.ErrInvalidScoreOutput)
	}
	return parseAnalysis([]byte(completion.Choices[0].Message.Content), req.Candidate.CandidateID)
}
