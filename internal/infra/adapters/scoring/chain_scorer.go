package scoring

import (
	"context"
	"errors"
	"strings"

	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/domain/ports/adapter"
)

var _ adapter.Scorer = (*ChainScorer)(nil)

// ChainScorer asks each provider in order until one returns a result.
type ChainScorer struct {
	scorers []adapter.Scorer
}

func NewChainScorer(scorers ...adapter.Scorer) adapter.Scorer {
	var list []adapter.Scorer
	for _, s := range scorers {
		if s != nil {
			list = append(list, s)
		}
	}
	if len(list) == 1 {
		return list[0]
	}
	return &ChainScorer{scorers: list}
}

func (c *ChainScorer) Name() string {
	names := make([]string, 0, len(c.scorers))
	for _, s := range c.scorers {
		names = append(names, s.Name())
	}
	return strings.Join(names, ">")
}

func (c *ChainScorer) Score(ctx context.Context, req adapter.ScoreRequest) (*model.ScoreResult, error) {
	if len(c.scorers) == 0 {
		return nil, errors.New("no scoring provider configured")
	}
	var errs []error
	for _, s := range c.scorers {
		res, err := s.Score(ctx, req)
		if err == nil {
			return res, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}
