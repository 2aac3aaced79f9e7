// Package metrics holds the Prometheus collectors exported on /metrics.
//
// All recording methods are safe to call on a nil *Metrics, so services and
// tests can run without a registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "famfund"

type Metrics struct {
	registry *prometheus.Registry

	rpcRequests       *prometheus.CounterVec
	rpcDuration       *prometheus.HistogramVec
	expensesApplied   prometheus.Counter
	transfersProposed prometheus.Counter
	eventsSettled     prometheus.Counter
}

// New creates the collectors on a private registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		expensesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_applied_total",
			Help:      "Expense events accepted into a ledger.",
		}),
		transfersProposed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_proposed_total",
			Help:      "Transfers returned by settlement proposals.",
		}),
		eventsSettled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_settled_total",
			Help:      "Expense events marked as settled.",
		}),
	}
	m.registry.MustRegister(
		m.rpcRequests,
		m.rpcDuration,
		m.expensesApplied,
		m.transfersProposed,
		m.eventsSettled,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRPC records one finished call. code is the Connect code string, "ok"
// on success.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

func (m *Metrics) ExpenseApplied() {
	if m == nil {
		return
	}
	m.expensesApplied.Inc()
}

func (m *Metrics) TransfersProposed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.transfersProposed.Add(float64(n))
}

func (m *Metrics) EventSettled() {
	if m == nil {
		return
	}
	m.eventsSettled.Inc()
}
