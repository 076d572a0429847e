// Package observability exposes Prometheus instrumentation for the bot
// and a small ops HTTP server (/healthz, /metrics). Labels are kept to
// closed, low-cardinality sets: update kinds, callback action names, and
// collaborator service/operation pairs.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// updatesTotal counts incoming Telegram updates by kind.
	updatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of Telegram updates received.",
		},
		[]string{"kind"},
	)

	// callbacksTotal counts inline-button taps by action and outcome.
	callbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_callbacks_total",
			Help: "Total number of callback queries handled.",
		},
		[]string{"action", "outcome"},
	)

	// collabLatency records collaborator call duration by service and
	// operation; success is a label so failure latency stays visible.
	collabLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_collaborator_request_duration_seconds",
			Help:    "Duration of requests to backing services in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "op", "success"},
	)

	// registryEntries gauges the number of live action-registry entries.
	registryEntries = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "bot_registry_entries",
			Help: "Current number of live action registry entries.",
		},
		func() float64 {
			if registryLen == nil {
				return 0
			}
			return float64(registryLen())
		},
	)

	// registryLen is installed once at startup by SetRegistrySource.
	registryLen func() int
)

func init() {
	prometheus.MustRegister(updatesTotal, callbacksTotal, collabLatency, registryEntries)
}

// SetRegistrySource installs the function the registry gauge samples.
// Call once during wiring, before the ops server starts serving.
func SetRegistrySource(lenFn func() int) {
	registryLen = lenFn
}

// ObserveUpdate records one incoming update of the given kind
// ("message", "callback", or "other").
func ObserveUpdate(kind string) {
	updatesTotal.WithLabelValues(kind).Inc()
}

// ObserveCallback records one handled callback query with its outcome
// ("ok", "error", "stale", "denied", or "ignored").
func ObserveCallback(action, outcome string) {
	callbacksTotal.WithLabelValues(action, outcome).Inc()
}

// ObserveCollaborator records one backing-service call.
func ObserveCollaborator(service, op string, d time.Duration, err error) {
	collabLatency.WithLabelValues(service, op, strconv.FormatBool(err == nil)).Observe(d.Seconds())
}
