// Package telemetry wires logging, Prometheus metrics and OpenTelemetry
// tracing for the refugeeflow services.
package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "refugeeflow"

var (
	// chartsTotal counts chart computations.
	// Labels: kind (bar, sankey, node-link), status (ok, empty, error)
	chartsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "view",
		Name:      "charts_total",
		Help:      "Total chart computations by kind and status",
	}, []string{"kind", "status"})

	// chartDuration measures the time to compute one chart.
	// Labels: kind
	chartDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "view",
		Name:      "chart_duration_seconds",
		Help:      "Chart computation latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"kind"})

	// layoutIterations tracks how many simulation steps a layout needed.
	// Labels: algorithm
	layoutIterations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "layout",
		Name:      "iterations",
		Help:      "Simulation steps per layout run",
		Buckets:   []float64{1, 10, 25, 50, 100, 200, 300, 500, 1000, 2000},
	}, []string{"algorithm"})

	// layoutRuns counts layout runs by outcome.
	// Labels: algorithm, converged (true, false)
	layoutRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "layout",
		Name:      "runs_total",
		Help:      "Layout runs by convergence outcome",
	}, []string{"algorithm", "converged"})

	// layoutDuration measures wall time of a layout run.
	// Labels: algorithm
	layoutDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "layout",
		Name:      "duration_seconds",
		Help:      "Layout computation time in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"algorithm"})

	// httpRequests counts API requests.
	// Labels: route, status (HTTP status code)
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code",
	}, []string{"route", "status"})
)

// RecordChart records one chart computation
func RecordChart(kind, status string, durationSec float64) {
	chartsTotal.WithLabelValues(kind, status).Inc()
	chartDuration.WithLabelValues(kind).Observe(durationSec)
}

// RecordLayout records one layout run
func RecordLayout(algorithm string, iterations int, converged bool, durationSec float64) {
	layoutIterations.WithLabelValues(algorithm).Observe(float64(iterations))
	layoutRuns.WithLabelValues(algorithm, strconv.FormatBool(converged)).Inc()
	layoutDuration.WithLabelValues(algorithm).Observe(durationSec)
}

// RecordHTTPRequest records one served API request
func RecordHTTPRequest(route string, status int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
