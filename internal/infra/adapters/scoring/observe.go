package scoring

import (
	"time"

	"hirehub-ranking/internal/infra/metrics"
)

func observe(provider, model string, start time.Time, err error) {
	metrics.ObserveScoringCall(provider, model, time.Since(start), err == nil)
}
