// Package metrics registers the engine's Prometheus collectors on the
// controller-runtime registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	EnrichTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventcatalog_enrich_total",
			Help: "Number of enrichment passes by collection.",
		},
		[]string{"collection"},
	)
	EnrichErrorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventcatalog_enrich_error_total",
			Help: "Number of enrichment passes that failed, by collection.",
		},
		[]string{"collection"},
	)
	EnrichDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventcatalog_enrich_duration_seconds",
			Help:    "Time taken to enrich a collection.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection"},
	)

	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventcatalog_cache_hits_total",
			Help: "Number of enriched collection cache hits.",
		},
		[]string{"collection"},
	)
	CacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventcatalog_cache_misses_total",
			Help: "Number of enriched collection cache misses.",
		},
		[]string{"collection"},
	)

	UnresolvedReferences = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eventcatalog_unresolved_references",
			Help: "Number of references dropped in the last enrichment pass of a collection.",
		},
		[]string{"collection"},
	)

	GraphNodes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventcatalog_graph_nodes",
			Help:    "Number of nodes in built graphs, by focus role.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"role"},
	)
	LayoutDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventcatalog_layout_duration_seconds",
			Help:    "Time taken to lay out a graph.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	metrics.Registry.MustRegister(
		EnrichTotal,
		EnrichErrorTotal,
		EnrichDuration,
		CacheHitsTotal,
		CacheMissesTotal,
		UnresolvedReferences,
		GraphNodes,
		LayoutDuration,
	)
}

// ObserveEnrich records one enrichment pass.
func ObserveEnrich(collection string, start time.Time, unresolved int, err error) {
	EnrichTotal.WithLabelValues(collection).Inc()
	EnrichDuration.WithLabelValues(collection).Observe(time.Since(start).Seconds())
	if err != nil {
		EnrichErrorTotal.WithLabelValues(collection).Inc()
		return
	}
	UnresolvedReferences.WithLabelValues(collection).Set(float64(unresolved))
}
