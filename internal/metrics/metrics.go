// Package metrics holds the prometheus collectors of the dashboard. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dashboard"

type Metrics struct {
	Registry *prometheus.Registry

	Aggregations        *prometheus.CounterVec
	AggregationDuration *prometheus.HistogramVec
	CacheRequests       *prometheus.CounterVec
	DatasetRows         *prometheus.GaugeVec
	StageDuration       *prometheus.HistogramVec
	Exports             *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Aggregations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_total",
			Help:      "Aggregation calls by granularity, metric kind and outcome.",
		}, []string{"granularity", "kind", "outcome"}),
		AggregationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Time spent in a single aggregation call.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"granularity"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by cached function and result.",
		}, []string{"fn", "result"}),
		DatasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows of the last load of each dataset, by state.",
		}, []string{"dataset", "state"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_stage_duration_seconds",
			Help:      "Duration of each dataset load stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"dataset", "stage"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Exports by target type and outcome.",
		}, []string{"type", "outcome"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Aggregations,
		m.AggregationDuration,
		m.CacheRequests,
		m.DatasetRows,
		m.StageDuration,
		m.Exports,
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAggregation(granularity, kind string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Aggregations.WithLabelValues(granularity, kind, outcome).Inc()
	m.AggregationDuration.WithLabelValues(granularity).Observe(time.Since(start).Seconds())
}

func (m *Metrics) CacheHit(fn string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(fn, "hit").Inc()
}

func (m *Metrics) CacheMiss(fn string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(fn, "miss").Inc()
}

func (m *Metrics) ObserveStage(dataset, stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(dataset, stage).Observe(d.Seconds())
}

func (m *Metrics) SetDatasetRows(dataset string, loaded, rejected int) {
	if m == nil {
		return
	}
	m.DatasetRows.WithLabelValues(dataset, "loaded").Set(float64(loaded))
	m.DatasetRows.WithLabelValues(dataset, "rejected").Set(float64(rejected))
}

func (m *Metrics) ObserveExport(kind string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.Exports.WithLabelValues(kind, outcome).Inc()
}
