// Package metricspkg exposes application Prometheus collectors.
package metricspkg

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	openPools = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "streampot",
			Subsystem: "lottery",
			Name:      "open_pools",
			Help:      "Current number of open pools.",
		},
	)

	entries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "streampot",
			Subsystem: "lottery",
			Name:      "entries_total",
			Help:      "Total number of accepted pool entries.",
		},
	)

	draws = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "streampot",
			Subsystem: "lottery",
			Name:      "draws_total",
			Help:      "Total number of pool resolutions.",
		},
		[]string{"outcome"}, // completed, cancelled, empty, retried
	)

	ledgerOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "streampot",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Total number of ledger mutations.",
		},
		[]string{"op", "status"},
	)
)

func init() {
	Registry.MustRegister(openPools, entries, draws, ledgerOps)
}

// PoolOpened increments the open pool gauge.
func PoolOpened() { openPools.Inc() }

// PoolClosed decrements the open pool gauge.
func PoolClosed() { openPools.Dec() }

// EntryAccepted counts an accepted pool entry.
func EntryAccepted() { entries.Inc() }

// DrawResolved counts a pool resolution with the given outcome.
func DrawResolved(outcome string) { draws.WithLabelValues(outcome).Inc() }

// LedgerOp counts a ledger mutation attempt.
func LedgerOp(op, status string) { ledgerOps.WithLabelValues(op, status).Inc() }

// Handler returns the HTTP handler serving the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
