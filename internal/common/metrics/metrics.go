// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_recommendations_total",
			Help: "Total number of recommendation queries processed",
		},
		[]string{"target_kind", "status"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "matching_recommendation_duration_seconds",
			Help: "Duration of recommendation queries in seconds",
		},
		[]string{"target_kind"},
	)

	ScoresComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_scores_computed_total",
			Help: "Total number of pairwise match scores computed",
		},
	)

	PoolSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matching_pool_size",
			Help:    "Size of the counterpart pool per recommendation query",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"target_kind"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_cache_hits_total",
			Help: "Total number of score cache hits",
		},
		[]string{"tier"}, // local or redis
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_cache_misses_total",
			Help: "Total number of score cache misses",
		},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_cache_evictions_total",
			Help: "Total number of score cache LRU evictions",
		},
	)

	CacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_cache_invalidations_total",
			Help: "Total number of entries dropped by profile-change invalidation",
		},
	)
)
