package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(resumesProcessedTotal) }

var resumesProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "resumes_processed_total",
		Help: "Total number of resume parses, labeled by status.",
	},
	[]string{"status"}, // 'completed', 'failed'
)

func IncResumeProcessed(status string) {
	resumesProcessedTotal.WithLabelValues(norm(status)).Inc()
}
