package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tartampluch/go-age/internal/config"
	"github.com/tartampluch/go-age/internal/engine"
)

// Metrics holds the Prometheus collectors of the service. Each instance owns
// its registry so several servers (and tests) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	AgeRequests     *prometheus.CounterVec
	EndpointLatency *prometheus.HistogramVec
	FeedSyncs       *prometheus.CounterVec
	FeedSyncLatency prometheus.Histogram
	FeedContacts    prometheus.Gauge
	BirthdaysToday  prometheus.Gauge
}

// New creates and registers all collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		AgeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      "age_calculations_total",
			Help:      "Age calculations served, labeled by outcome",
		}, []string{"result"}),
		EndpointLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.MetricsNamespace,
			Name:      "endpoint_latency_seconds",
			Help:      "Latency of endpoints in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		FeedSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      "feed_syncs_total",
			Help:      "Contacts feed synchronizations, labeled by outcome",
		}, []string{"result"}),
		FeedSyncLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: config.MetricsNamespace,
			Name:      "feed_sync_duration_seconds",
			Help:      "Duration of contacts feed synchronizations in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		FeedContacts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: config.MetricsNamespace,
			Name:      "feed_contacts",
			Help:      "Contacts with a usable birthday in the last successful sync",
		}),
		BirthdaysToday: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: config.MetricsNamespace,
			Name:      "feed_birthdays_today",
			Help:      "Birthdays falling today according to the last successful sync",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.AgeRequests,
		m.EndpointLatency,
		m.FeedSyncs,
		m.FeedSyncLatency,
		m.FeedContacts,
		m.BirthdaysToday,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveAgeRequest counts one age calculation by the error it produced.
func (m *Metrics) ObserveAgeRequest(err error) {
	m.AgeRequests.WithLabelValues(resultLabel(err)).Inc()
}

// ObserveEndpointLatency records the latency for a given endpoint.
func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}

// ObserveSync records a feed synchronization. Gauges keep the values of the
// last successful sync.
func (m *Metrics) ObserveSync(elapsed time.Duration, entries, today int, err error) {
	m.FeedSyncLatency.Observe(elapsed.Seconds())
	if err != nil {
		m.FeedSyncs.WithLabelValues(config.MetricResultError).Inc()
		return
	}
	m.FeedSyncs.WithLabelValues(config.MetricResultOK).Inc()
	m.FeedContacts.Set(float64(entries))
	m.BirthdaysToday.Set(float64(today))
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return config.MetricResultOK
	case errors.Is(err, engine.ErrMalformedInput):
		return config.MetricResultMalformed
	case errors.Is(err, engine.ErrInvalidRange):
		return config.MetricResultRange
	default:
		return config.MetricResultError
	}
}
