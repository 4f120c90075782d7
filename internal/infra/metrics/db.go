package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dbPoolConns, dbPoolAcquires) }

var (
	dbPoolConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_conns",
			Help: "Connections in the Postgres pool by state.",
		},
		[]string{"state"}, // 'total', 'idle', 'acquired', 'max'
	)

	dbPoolAcquires = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_acquires",
			Help: "Cumulative pool acquire counters as reported by pgxpool.",
		},
		[]string{"kind"}, // 'total', 'empty', 'canceled'
	)
)

// PoolStat is the subset of pgxpool.Stat the exporter reads.
type PoolStat interface {
	TotalConns() int32
	IdleConns() int32
	AcquiredConns() int32
	MaxConns() int32
	AcquireCount() int64
	EmptyAcquireCount() int64
	CanceledAcquireCount() int64
}

func SetDBPoolStats(s PoolStat) {
	dbPoolConns.WithLabelValues("total").Set(float64(s.TotalConns()))
	dbPoolConns.WithLabelValues("idle").Set(float64(s.IdleConns()))
	dbPoolConns.WithLabelValues("acquired").Set(float64(s.AcquiredConns()))
	dbPoolConns.WithLabelValues("max").Set(float64(s.MaxConns()))
	dbPoolAcquires.WithLabelValues("total").Set(float64(s.AcquireCount()))
	dbPoolAcquires.WithLabelValues("empty").Set(float64(s.EmptyAcquireCount()))
	dbPoolAcquires.WithLabelValues("canceled").Set(float64(s.CanceledAcquireCount()))
}
