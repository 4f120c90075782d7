package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		scoringCallsTotal,
		scoringLatencyMs,
		scoringRetries,
		scoringTokensIn,
	)
}

var (
	scoringCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_calls_total",
			Help: "Calls to the external scoring service per provider/model.",
		},
		[]string{"provider", "model", "success"},
	)

	scoringLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scoring_calls_latency_ms",
			Help:    "Scoring call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2000, 4000, 8000, 16000, 32000},
		},
		[]string{"provider", "model", "success"},
	)

	scoringRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_retries_total",
			Help: "Retried scoring attempts per provider.",
		},
		[]string{"provider"},
	)

	scoringTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_prompt_tokens",
			Help: "Sum of prompt tokens sent to LLM scoring providers.",
		},
		[]string{"provider", "model"},
	)
)

func ObserveScoringCall(provider, model string, latency time.Duration, success bool) {
	ok := strconv.FormatBool(success)
	scoringCallsTotal.WithLabelValues(norm(provider), norm(model), ok).Inc()
	scoringLatencyMs.WithLabelValues(norm(provider), norm(model), ok).
		Observe(float64(latency / time.Millisecond))
}

func IncScoringRetry(provider string) {
	scoringRetries.WithLabelValues(norm(provider)).Inc()
}

func AddPromptTokens(provider, model string, n int) {
	scoringTokensIn.WithLabelValues(norm(provider), norm(model)).Add(float64(n))
}
