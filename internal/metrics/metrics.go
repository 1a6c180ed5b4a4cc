// Package metrics exposes the server's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sidirok"

// Diagnosis outcomes
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeNoMatch = "no_match"
	OutcomeError   = "error"
)

// Knowledge lookup tiers and results
const (
	TierMemory = "memory"
	TierRedis  = "redis"
	TierStore  = "store"
	TierStale  = "stale"

	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// Metrics owns a registry and every collector registered on it.
type Metrics struct {
	registry *prometheus.Registry

	diagnoses        *prometheus.CounterVec
	diagnosisLatency prometheus.Histogram
	riskLevels       *prometheus.CounterVec
	knowledgeLookups *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
}

// New creates a Metrics with its own registry, including Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// Labels: outcome (success, invalid, no_match, error)
		diagnoses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "diagnosis",
			Name:      "processed_total",
			Help:      "Diagnoses processed by outcome",
		}, []string{"outcome"}),

		diagnosisLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "diagnosis",
			Name:      "duration_seconds",
			Help:      "Diagnosis pipeline latency in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),

		riskLevels: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "diagnosis",
			Name:      "risk_level_total",
			Help:      "Diagnoses by summary risk level",
		}, []string{"level"}),

		// Labels: tier (memory, redis, store, stale), result (hit, miss, error)
		knowledgeLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "knowledge",
			Name:      "lookups_total",
			Help:      "Knowledge snapshot lookups by tier and result",
		}, []string{"tier", "result"}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),

		httpLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RecordDiagnosis(outcome string, elapsed time.Duration) {
	m.diagnoses.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess || outcome == OutcomeNoMatch {
		m.diagnosisLatency.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) RecordRiskLevel(level string) {
	m.riskLevels.WithLabelValues(level).Inc()
}

func (m *Metrics) RecordKnowledgeLookup(tier, result string) {
	m.knowledgeLookups.WithLabelValues(tier, result).Inc()
}

// RecordHTTPRequest records one served request. route is the matched
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
