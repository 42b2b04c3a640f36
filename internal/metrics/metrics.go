// Package metrics defines the prometheus collectors exported by bountyd.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one node. Each instance owns its
// registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	transactions  *prometheus.CounterVec
	applySeconds  *prometheus.HistogramVec
	rpcRequests   *prometheus.CounterVec
	historyErrors prometheus.Counter
	subscribers   prometheus.Gauge
}

// New creates and registers the collectors, plus the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bountyd_transactions_total",
				Help: "Number of submitted transactions by type and engine result.",
			},
			[]string{"type", "result"},
		),
		applySeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bountyd_apply_seconds",
				Help:    "Time spent applying a transaction, including the wait for the engine lock.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"type"},
		),
		rpcRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bountyd_rpc_requests_total",
				Help: "Number of RPC requests by method and status.",
			},
			[]string{"method", "status"},
		),
		historyErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bountyd_history_errors_total",
				Help: "Number of applied transactions that could not be written to history.",
			},
		),
		subscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bountyd_ws_subscribers",
				Help: "Number of open WebSocket connections.",
			},
		),
	}

	m.registry.MustRegister(
		m.transactions,
		m.applySeconds,
		m.rpcRequests,
		m.historyErrors,
		m.subscribers,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveTransaction records one engine application.
func (m *Metrics) ObserveTransaction(txType, result string, elapsed time.Duration) {
	m.transactions.WithLabelValues(txType, result).Inc()
	m.applySeconds.WithLabelValues(txType).Observe(elapsed.Seconds())
}

// ObserveRPC records one RPC request.
func (m *Metrics) ObserveRPC(method, status string) {
	m.rpcRequests.WithLabelValues(method, status).Inc()
}

// HistoryError records a failed history write.
func (m *Metrics) HistoryError() {
	m.historyErrors.Inc()
}

// SubscriberConnected and SubscriberDisconnected track WebSocket clients.
func (m *Metrics) SubscriberConnected()    { m.subscribers.Inc() }
func (m *Metrics) SubscriberDisconnected() { m.subscribers.Dec() }
