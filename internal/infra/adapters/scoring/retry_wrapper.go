package scoring

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/domain/ports/adapter"
	"hirehub-ranking/internal/infra/metrics"
)

var _ adapter.Scorer = (*retryScorer)(nil)

const maxBackoff = 16 * time.Second

// retryScorer retries failed calls with exponential backoff while the
// caller's deadline allows.
type retryScorer struct {
	inner    adapter.Scorer
	attempts int
	base     time.Duration
	log      *zerolog.Logger
}

func NewRetryScorer(inner adapter.Scorer, attempts int, base time.Duration, logger *zerolog.Logger) adapter.Scorer {
	if attempts <= 1 {
		return inner
	}
	if base <= 0 {
		base = time.Second
	}
	return &retryScorer{inner: inner, attempts: attempts, base: base, log: logger}
}

func (r *retryScorer) Name() string { return r.inner.Name() }

func (r *retryScorer) Score(ctx context.Context, req adapter.ScoreRequest) (*model.ScoreResult, error) {
	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			wait := time.Duration(math.Pow(2, float64(attempt-1))) * r.base
			if wait > maxBackoff {
				wait = maxBackoff
			}
			metrics.IncScoringRetry(r.inner.Name())
			r.log.Debug().Err(lastErr).Int("attempt", attempt+1).Dur("backoff", wait).
				Str("candidate_id", req.Candidate.CandidateID).Msg("retrying scoring call")
			select {
			case <-ctx.Done():
				return nil, lastErr
			case <-time.After(wait):
			}
		}
		res, err := r.inner.Score(ctx, req)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !retryable(ctx, err) {
			return nil, err
		}
	}
	return nil, lastErr
}

// retryable is false for caller cancellation and for client errors other
// than throttling, which would fail the same way again.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return true
}
