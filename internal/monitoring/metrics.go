package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	ScoringDuration  prometheus.Histogram
	ScoresComputed   prometheus.Counter
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	RateLimitBlocks  prometheus.Counter
	RateLimitDegrade prometheus.Counter
}

// NewMetrics registers the service collectors on the given registerer.
// Pass prometheus.DefaultRegisterer in production; tests use their own
// registry so repeated registration never panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "drepscore_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "drepscore_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		ScoringDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "drepscore_scoring_duration_seconds",
			Help:    "Latency of one DRep scoring computation.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		ScoresComputed: factory.NewCounter(prometheus.CounterOpts{
			Name: "drepscore_scores_computed_total",
			Help: "DRep scores computed, cache misses only.",
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "drepscore_cache_hits_total",
			Help: "Score responses served from the TTL cache.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "drepscore_cache_misses_total",
			Help: "Score requests that missed the TTL cache.",
		}),
		RateLimitBlocks: factory.NewCounter(prometheus.CounterOpts{
			Name: "drepscore_ratelimit_blocks_total",
			Help: "Requests rejected by the rate limiter.",
		}),
		RateLimitDegrade: factory.NewCounter(prometheus.CounterOpts{
			Name: "drepscore_ratelimit_fallback_total",
			Help: "Rate limit checks served by the in-memory fallback.",
		}),
	}
}
