// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PageCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "page_cache_hits_total",
			Help: "Total number of page model cache hits",
		},
	)

	PageCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "page_cache_misses_total",
			Help: "Total number of page model cache misses",
		},
	)

	PageCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "page_cache_entries",
			Help: "Current number of cached page models",
		},
	)

	PageRevalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_revalidations_total",
			Help: "Total number of revalidation signals per page path",
		},
		[]string{"path"},
	)

	ContentWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_writes_total",
			Help: "Total number of content writes by collection, operation and outcome",
		},
		[]string{"collection", "operation", "outcome"}, // outcome: ok, invalid, error
	)

	RadioProxyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radio_proxy_requests_total",
			Help: "Total number of radio status proxy requests",
		},
		[]string{"endpoint", "provider", "outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	TaskExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_executions_total",
			Help: "Total number of background task executions",
		},
		[]string{"type", "outcome"},
	)

	SongLinkSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "song_link_searches_total",
			Help: "Total number of AI song link searches",
		},
		[]string{"outcome"},
	)
)
