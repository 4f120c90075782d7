package scoring

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"hirehub-ranking/internal/config"
	"hirehub-ranking/internal/domain/ports/adapter"
)

// New builds the configured scorer stack: provider (plus optional fallback),
// retried with backoff, behind the process-wide concurrency limit.
func New(ctx context.Context, cfg config.ScoringConfig, logger *zerolog.Logger) (adapter.Scorer, error) {
	budget := NewTokenBudget(cfg.MaxResumeTokens)

	primary, err := newProvider(ctx, cfg.Provider, cfg.Endpoint, cfg.APIKey, cfg.Model, cfg.BaseURL, budget)
	if err != nil {
		return nil, err
	}
	scorer := primary
	if cfg.FallbackProvider != "" {
		fb, err := newProvider(ctx, cfg.FallbackProvider, cfg.Endpoint, cfg.FallbackAPIKey, cfg.FallbackModel, "", budget)
		if err != nil {
			return nil, fmt.Errorf("fallback scorer: %w", err)
		}
		scorer = NewChainScorer(primary, fb)
	}

	sl := logger.With().Str("component", "Scorer").Str("provider", scorer.Name()).Logger()
	scorer = NewRetryScorer(scorer, cfg.MaxRetries, cfg.BaseBackoff, &sl)
	return NewLimitedScorer(scorer, cfg.ConcurrentLimit), nil
}

func newProvider(ctx context.Context, provider, endpoint, apiKey, model, baseURL string, budget *TokenBudget) (adapter.Scorer, error) {
	switch provider {
	case "http":
		return NewHTTPScorer(endpoint, apiKey, 0)
	case "openai":
		return NewOpenAIScorer(apiKey, model, baseURL, budget)
	case "gemini":
		return NewGeminiScorer(ctx, apiKey, baseURL, model, budget)
	default:
		return nil, fmt.Errorf("unknown scoring provider %q", provider)
	}
}
