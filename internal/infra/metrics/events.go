package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(eventsPublished) }

var eventsPublished = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "status_events_published_total",
		Help: "Ranking status events handed to the broker, by result.",
	},
	[]string{"result"},
)

func IncEventPublished(ok bool) {
	res := "ok"
	if !ok {
		res = "error"
	}
	eventsPublished.WithLabelValues(res).Inc()
}
