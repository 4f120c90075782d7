package scoring

import (
	"context"

	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.Scorer = (*limitedScorer)(nil)

// limitedScorer caps in-flight calls across every ranking run in the process.
type limitedScorer struct {
	inner adapter.Scorer
	sem   chan struct{}
}

func NewLimitedScorer(inner adapter.Scorer, maxConcurrent int) adapter.Scorer {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedScorer{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedScorer) Name() string { return l.inner.Name() }

func (l *limitedScorer) Score(ctx context.Context, req adapter.ScoreRequest) (*model.ScoreResult, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.Score(ctx, req)
}
