package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EvictionsTotal        *prometheus.CounterVec
	EvictionFailuresTotal *prometheus.CounterVec
	UnknownEventsTotal    prometheus.Counter
	FullFlushesTotal      prometheus.Counter
	BatchSize             prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		EvictionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coursepulse_invalidation_evictions_total",
			Help: "Total number of cache-scope evictions issued, by event category",
		}, []string{"category"}),
		EvictionFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coursepulse_invalidation_eviction_failures_total",
			Help: "Total number of cache-scope evictions that failed at the store, by event category",
		}, []string{"category"}),
		UnknownEventsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coursepulse_invalidation_unknown_events_total",
			Help: "Total number of events dropped because their type is not in the routing table",
		}),
		FullFlushesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coursepulse_invalidation_full_flushes_total",
			Help: "Total number of full analytics-namespace flushes triggered by destructive events",
		}),
		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "coursepulse_invalidation_batch_size",
			Help:    "Distribution of event counts per HandleBatch call",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
	}
}

func (m *Metrics) IncrementEvictions(category string, n int) {
	m.EvictionsTotal.WithLabelValues(category).Add(float64(n))
}

func (m *Metrics) IncrementEvictionFailures(category string) {
	m.EvictionFailuresTotal.WithLabelValues(category).Inc()
}

func (m *Metrics) AddUnknownEvents(count int) {
	m.UnknownEventsTotal.Add(float64(count))
}

func (m *Metrics) IncrementFullFlushes() {
	m.FullFlushesTotal.Inc()
}

func (m *Metrics) ObserveBatchSize(n int) {
	m.BatchSize.Observe(float64(n))
}
