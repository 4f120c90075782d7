package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		rankingRunsTotal,
		rankingRunDuration,
		rankingApplicantsTotal,
		rankingRunsInFlight,
		rankingStatusReads,
		staleRunsReaped,
	)
}

var (
	rankingRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_runs_total",
			Help: "Ranking runs by outcome (started/completed/failed/rejected/cached).",
		},
		[]string{"outcome"},
	)

	rankingRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranking_run_duration_seconds",
			Help:    "Wall time of a ranking run from dispatch to terminal status.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"status"},
	)

	rankingApplicantsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_applicants_total",
			Help: "Applicants processed by ranking runs, by result (scored/failed).",
		},
		[]string{"result"},
	)

	rankingRunsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ranking_runs_in_flight",
			Help: "Ranking runs currently executing in this process.",
		},
	)

	rankingStatusReads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_status_reads_total",
			Help: "Status queries by the source that answered them (cache/store).",
		},
		[]string{"source"},
	)

	staleRunsReaped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ranking_stale_runs_reaped_total",
			Help: "Abandoned processing runs marked failed by the sweeper.",
		},
	)
)

func IncRankingRun(outcome string) {
	rankingRunsTotal.WithLabelValues(norm(outcome)).Inc()
}

func ObserveRankingRun(status string, d time.Duration) {
	rankingRunDuration.WithLabelValues(norm(status)).Observe(d.Seconds())
}

func IncRankedApplicant(result string) {
	rankingApplicantsTotal.WithLabelValues(norm(result)).Inc()
}

func RunStarted()  { rankingRunsInFlight.Inc() }
func RunFinished() { rankingRunsInFlight.Dec() }

func IncStatusRead(source string) {
	rankingStatusReads.WithLabelValues(norm(source)).Inc()
}

func AddStaleRunsReaped(n int) {
	staleRunsReaped.Add(float64(n))
}
