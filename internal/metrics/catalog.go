package metrics

import "github.com/prometheus/client_golang/prometheus"

// Rank snapshot metrics.
var (
	RankRebuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rank_rebuild_duration_seconds",
			Help:      "Duration of a full rank snapshot rebuild",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	RankRebuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rank_rebuilds_total",
			Help:      "Total rank snapshot rebuilds",
		},
		[]string{"status"}, // "ok" / "error"
	)

	RankSnapshotRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rank_snapshot_rows",
			Help:      "Rows written to each rank collection by the last rebuild",
		},
		[]string{"sort"},
	)

	RankSnapshotRedirectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rank_snapshot_redirects_total",
			Help:      "Ranked page requests redirected to the live listing",
		},
		[]string{"sort"},
	)
)

var catalogMetricsRegistered bool

// RegisterCatalogMetrics registers rank snapshot metrics. Must be called once from main.
func RegisterCatalogMetrics() {
	if catalogMetricsRegistered {
		return
	}
	prometheus.MustRegister(RankRebuildDuration)
	prometheus.MustRegister(RankRebuildsTotal)
	prometheus.MustRegister(RankSnapshotRows)
	prometheus.MustRegister(RankSnapshotRedirectsTotal)
	catalogMetricsRegistered = true
}
