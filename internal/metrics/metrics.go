// Package metrics holds the Prometheus collectors for cache and fetch activity.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeTransportError = "transport_error"
	OutcomeDecodeError    = "decode_error"
)

// Metrics groups the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	CacheLookupsTotal   *prometheus.CounterVec
	CacheEvictionsTotal *prometheus.CounterVec
	FetchesTotal        *prometheus.CounterVec
	FetchDuration       prometheus.Histogram
}

// New creates a Metrics with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cur_cache_lookups_total",
				Help: "Total number of rate cache lookups",
			},
			[]string{"result"},
		),

		CacheEvictionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cur_cache_evictions_total",
				Help: "Total number of cache entries evicted on read",
			},
			[]string{"reason"},
		),

		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cur_rate_fetches_total",
				Help: "Total number of requests to the remote rate source",
			},
			[]string{"base", "outcome"},
		),

		FetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cur_rate_fetch_duration_seconds",
				Help:    "Remote rate source request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// CacheHit records a lookup answered from the cache.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheLookupsTotal.WithLabelValues("hit").Inc()
}

// CacheMiss records a lookup that found nothing usable.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheLookupsTotal.WithLabelValues("miss").Inc()
}

// CacheEvicted records an entry removed on read.
func (m *Metrics) CacheEvicted(reason string) {
	if m == nil {
		return
	}
	m.CacheEvictionsTotal.WithLabelValues(reason).Inc()
}

// FetchCompleted records one request to the remote rate source.
func (m *Metrics) FetchCompleted(base, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(base, outcome).Inc()
	m.FetchDuration.Observe(d.Seconds())
}

// WriteTextfile writes every collected metric to path in the text exposition
// format, for pickup by a node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
