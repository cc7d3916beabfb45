package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recommendation metrics.
var (
	RecommendationCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendation_cache_total",
			Help:      "Recommendation cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	RateLimitRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejections_total",
			Help:      "Requests rejected by the rate limiter",
		},
		[]string{"backend"}, // "redis" / "memory"
	)
)

var recMetricsRegistered bool

// RegisterRecommendationMetrics registers recommendation and rate-limit metrics.
func RegisterRecommendationMetrics() {
	if recMetricsRegistered {
		return
	}
	prometheus.MustRegister(RecommendationCacheTotal)
	prometheus.MustRegister(RateLimitRejectionsTotal)
	recMetricsRegistered = true
}
