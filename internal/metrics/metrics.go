// Package metrics provides Prometheus instrumentation for the registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/arkeo/internal/core/domain"
)

const namespace = "arkeo"

// Call outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Metrics holds the registry's Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	// ConnectorCalls counts connector calls by connector, operation and outcome.
	ConnectorCalls *prometheus.CounterVec

	// ConnectorLatency observes connector call duration.
	ConnectorLatency *prometheus.HistogramVec

	// ConnectorItems counts items returned per connector.
	ConnectorItems *prometheus.CounterVec

	// FanoutDuration observes whole fan-out duration by operation.
	FanoutDuration *prometheus.HistogramVec

	// Health reports the last health status per connector (1 usable, 0 not).
	Health *prometheus.GaugeVec

	// HealthLatency reports the last health check latency in seconds.
	HealthLatency *prometheus.GaugeVec
}

// New creates metrics on a private registry so several instances can
// coexist (one per test, one per process).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		ConnectorCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connector_calls_total",
			Help:      "Connector calls by outcome",
		}, []string{"connector", "operation", "outcome", "kind"}),
		ConnectorLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "connector_call_duration_seconds",
			Help:      "Time spent in a single connector call",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"connector", "operation"}),
		ConnectorItems: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connector_items_total",
			Help:      "Items returned by connectors",
		}, []string{"connector"}),
		FanoutDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fanout_duration_seconds",
			Help:      "Time to complete a registry fan-out",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"operation"}),
		Health: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connector_up",
			Help:      "Whether the connector's last health check was usable",
		}, []string{"connector", "status"}),
		HealthLatency: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connector_health_latency_seconds",
			Help:      "Latency of the connector's last health check",
		}, []string{"connector"}),
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveCall records one connector call. Safe on a nil receiver.
func (m *Metrics) ObserveCall(connector, operation string, d time.Duration, items int, err error) {
	if m == nil {
		return
	}
	outcome, kind := OutcomeOK, ""
	if err != nil {
		outcome, kind = OutcomeFailed, string(domain.ClassifyError(err))
	}
	m.ConnectorCalls.WithLabelValues(connector, operation, outcome, kind).Inc()
	m.ConnectorLatency.WithLabelValues(connector, operation).Observe(d.Seconds())
	if items > 0 {
		m.ConnectorItems.WithLabelValues(connector).Add(float64(items))
	}
}

// ObserveFanout records one fan-out. Safe on a nil receiver.
func (m *Metrics) ObserveFanout(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.FanoutDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveHealth records a health check. Safe on a nil receiver.
func (m *Metrics) ObserveHealth(result domain.HealthCheckResult) {
	if m == nil {
		return
	}
	m.Health.DeletePartialMatch(prometheus.Labels{"connector": result.ConnectorID})
	up := 0.0
	if result.Status.Usable() {
		up = 1
	}
	m.Health.WithLabelValues(result.ConnectorID, string(result.Status)).Set(up)
	m.HealthLatency.WithLabelValues(result.ConnectorID).Set(float64(result.ResponseTimeMS) / 1000)
}
