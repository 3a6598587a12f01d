// Package metric provides a Prometheus adapter for graph construction
// metrics.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/propgraph"
)

// PrometheusCollector exports graph construction metrics to a Prometheus
// registry.
type PrometheusCollector struct {
	addEdgesDuration prometheus.Histogram
	vertices         prometheus.Gauge
	edges            prometheus.Gauge
	loadDuration     *prometheus.HistogramVec
	loadRows         *prometheus.CounterVec
	loadDropped      *prometheus.CounterVec
	matchDuration    prometheus.Histogram
	matchPaths       prometheus.Counter
	errors           *prometheus.CounterVec
}

var _ propgraph.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector registers the propgraph metric family with reg and
// returns the collector. Use prometheus.DefaultRegisterer for the global
// registry.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)

	return &PrometheusCollector{
		addEdgesDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "propgraph",
			Name:      "add_edges_duration_seconds",
			Help:      "Duration of edge-loading operations.",
			Buckets:   prometheus.DefBuckets,
		}),
		vertices: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "propgraph",
			Name:      "vertices",
			Help:      "Number of vertices in the canonical universe.",
		}),
		edges: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "propgraph",
			Name:      "edges",
			Help:      "Number of edges in the canonical universe.",
		}),
		loadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "propgraph",
			Name:      "load_duration_seconds",
			Help:      "Duration of label, relationship and attribute loads.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		loadRows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "propgraph",
			Name:      "load_rows_total",
			Help:      "Input rows seen by loads.",
		}, []string{"op"}),
		loadDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "propgraph",
			Name:      "load_dropped_rows_total",
			Help:      "Load rows dropped because their key did not resolve.",
		}, []string{"op"}),
		matchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "propgraph",
			Name:      "match_duration_seconds",
			Help:      "Duration of pattern matches.",
			Buckets:   prometheus.DefBuckets,
		}),
		matchPaths: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "propgraph",
			Name:      "match_paths_total",
			Help:      "Paths returned by pattern matches.",
		}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "propgraph",
			Name:      "errors_total",
			Help:      "Failed operations.",
		}, []string{"op"}),
	}
}

// RecordAddEdges implements propgraph.MetricsCollector.
func (c *PrometheusCollector) RecordAddEdges(vertices, edges int, duration time.Duration, err error) {
	c.addEdgesDuration.Observe(duration.Seconds())
	if err != nil {
		c.errors.WithLabelValues("add_edges").Inc()
		return
	}
	c.vertices.Set(float64(vertices))
	c.edges.Set(float64(edges))
}

// RecordLoad implements propgraph.MetricsCollector.
func (c *PrometheusCollector) RecordLoad(op string, rows, dropped int, duration time.Duration, err error) {
	c.loadDuration.WithLabelValues(op).Observe(duration.Seconds())
	c.loadRows.WithLabelValues(op).Add(float64(rows))
	c.loadDropped.WithLabelValues(op).Add(float64(dropped))
	if err != nil {
		c.errors.WithLabelValues(op).Inc()
	}
}

// RecordMatch implements propgraph.MetricsCollector.
func (c *PrometheusCollector) RecordMatch(paths int, duration time.Duration, err error) {
	c.matchDuration.Observe(duration.Seconds())
	if err != nil {
		c.errors.WithLabelValues("match").Inc()
		return
	}
	c.matchPaths.Add(float64(paths))
}
