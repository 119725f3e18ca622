// Package metrics holds the Prometheus collectors of the pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records stage timings, run outcomes and embedded row counts.
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	runsTotal     *prometheus.CounterVec
	rowsTotal     *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the collectors on a private registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "tabvec"
	}
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"strategy", "stage"},
	)
	m.runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strategy_runs_total",
			Help:      "Strategy runs by outcome",
		},
		[]string{"strategy", "status"},
	)
	m.rowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_embedded_total",
			Help:      "Rows embedded by strategy",
		},
		[]string{"strategy"},
	)

	m.registry.MustRegister(m.stageDuration, m.runsTotal, m.rowsTotal)
	m.registry.MustRegister(prometheus.NewGoCollector())
	m.registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	return m
}

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(strategy, stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(strategy, stage).Observe(d.Seconds())
}

// RecordRun counts one strategy run, labelled ok or error.
func (m *Metrics) RecordRun(strategy string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.runsTotal.WithLabelValues(strategy, status).Inc()
}

// AddRows counts embedded rows.
func (m *Metrics) AddRows(strategy string, n int) {
	if m == nil {
		return
	}
	m.rowsTotal.WithLabelValues(strategy).Add(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
