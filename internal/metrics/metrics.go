package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the attribution service.
type Metrics struct {
	// Attribution metrics
	AttributionsComputed *prometheus.CounterVec
	AttributionFailures  *prometheus.CounterVec
	AttributionLatency   *prometheus.HistogramVec
	AttributedValue      *prometheus.CounterVec

	// Discovery optimizer metrics
	DiscoveryBoosts     *prometheus.CounterVec
	DiscoveryBoostValue prometheus.Histogram

	// Collaborator metrics
	CollaboratorFailures *prometheus.CounterVec

	// Ingestion metrics
	TouchpointsIngested *prometheus.CounterVec

	// Reporting metrics
	ReportsBuilt      prometheus.Counter
	ReportsIncomplete prometheus.Counter

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		AttributionsComputed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attributions_computed_total",
				Help:      "Total attribution calculations by model",
			},
			[]string{"model"},
		),
		AttributionFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attribution_failures_total",
				Help:      "Failed attribution calculations by reason",
			},
			[]string{"reason"},
		),
		AttributionLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "attribution_latency_seconds",
				Help:      "Attribution computation latency in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"model"},
		),
		AttributedValue: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attributed_value_total",
				Help:      "Conversion value attributed, by model",
			},
			[]string{"model"},
		),
		DiscoveryBoosts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "discovery_boosts_total",
				Help:      "Discovery-phase boosts applied, by platform",
			},
			[]string{"platform"},
		),
		DiscoveryBoostValue: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "discovery_boost_factor",
				Help:      "Distribution of applied discovery boost factors",
				Buckets:   []float64{1.0, 1.1, 1.25, 1.5, 1.75, 2.0, 2.5},
			},
		),
		CollaboratorFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "collaborator_failures_total",
				Help:      "External collaborator failures by collaborator",
			},
			[]string{"collaborator"},
		),
		TouchpointsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "touchpoints_ingested_total",
				Help:      "Touchpoints ingested by platform and event type",
			},
			[]string{"platform", "event_type"},
		),
		ReportsBuilt: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_built_total",
				Help:      "Performance reports generated",
			},
		),
		ReportsIncomplete: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_incomplete_total",
				Help:      "Performance reports flagged data_incomplete",
			},
		),
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Requests rejected by rate limiting",
			},
			[]string{"endpoint"},
		),
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAttribution records a successful attribution calculation.
func (m *Metrics) RecordAttribution(model string, value float64, latency time.Duration) {
	m.AttributionsComputed.WithLabelValues(model).Inc()
	m.AttributedValue.WithLabelValues(model).Add(value)
	m.AttributionLatency.WithLabelValues(model).Observe(latency.Seconds())
}

// RecordAttributionFailure records a failed calculation.
func (m *Metrics) RecordAttributionFailure(reason string) {
	m.AttributionFailures.WithLabelValues(reason).Inc()
}

// RecordDiscoveryBoost records an applied discovery boost.
func (m *Metrics) RecordDiscoveryBoost(platform string, factor float64) {
	m.DiscoveryBoosts.WithLabelValues(platform).Inc()
	m.DiscoveryBoostValue.Observe(factor)
}

// RecordCollaboratorFailure records an external provider failure.
func (m *Metrics) RecordCollaboratorFailure(collaborator string) {
	m.CollaboratorFailures.WithLabelValues(collaborator).Inc()
}

// RecordTouchpoint records an ingested touchpoint.
func (m *Metrics) RecordTouchpoint(platform, eventType string) {
	m.TouchpointsIngested.WithLabelValues(platform, eventType).Inc()
}

// RecordReport records a generated report.
func (m *Metrics) RecordReport(incomplete bool) {
	m.ReportsBuilt.Inc()
	if incomplete {
		m.ReportsIncomplete.Inc()
	}
}

// RecordRateLimitHit records a rate-limited request.
func (m *Metrics) RecordRateLimitHit(endpoint string) {
	m.RateLimitHits.WithLabelValues(endpoint).Inc()
}
