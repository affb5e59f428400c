package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors are registered on the default registry through promauto and
// exposed by the server on /metrics.
var (
	// HTTPRequestsTotal counts requests by method, route and status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphscope_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures handler latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphscope_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// ProjectionsTotal counts projector invocations by operation and outcome
	ProjectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphscope_projections_total",
			Help: "Total number of subgraph projections computed",
		},
		[]string{"operation", "outcome"},
	)

	// ProjectionDuration measures projector latency including store round trips
	ProjectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphscope_projection_duration_seconds",
			Help:    "Duration of subgraph projections in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// ProjectionSize records the node count of returned subgraphs
	ProjectionSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphscope_projection_nodes",
			Help:    "Number of nodes in returned subgraphs",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"operation"},
	)

	// ExpansionAdded records how many relationships one expansion introduced
	ExpansionAdded = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphscope_expansion_added_relationships",
			Help:    "Relationships newly added by a node expansion",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	// StoreQueryDuration measures graph store read transactions by operation
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphscope_store_query_duration_seconds",
			Help:    "Duration of graph store read transactions in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)

	// StoreUp is 1 while the last store health check passed
	StoreUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "graphscope_store_up",
			Help: "Whether the last graph store health check succeeded",
		},
	)
)

// ObserveProjection records the outcome of one projector call
func ObserveProjection(operation string, start time.Time, nodes int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ProjectionsTotal.WithLabelValues(operation, outcome).Inc()
	ProjectionDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err == nil {
		ProjectionSize.WithLabelValues(operation).Observe(float64(nodes))
	}
}

// ObserveStoreQuery records one store read transaction
func ObserveStoreQuery(operation string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	StoreQueryDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

// SetStoreUp records the latest health check outcome
func SetStoreUp(healthy bool) {
	if healthy {
		StoreUp.Set(1)
		return
	}
	StoreUp.Set(0)
}
