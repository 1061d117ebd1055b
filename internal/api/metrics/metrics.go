// Package metrics defines the portal's custom Prometheus collectors. It is
// the single source of truth for metric names, labels and help strings.
//
// Collectors are registered with the default registry on package load, so
// importing the package is enough; /metrics exposes them alongside the
// request metrics recorded by echoprometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Gate ─────────────────────────────────────────────────────────────────────

// GateDecisionsTotal counts access-control decisions.
// Label:
//   - outcome: "render", "redirect_login" or "redirect_home"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of access-control decisions, by outcome.",
	},
	[]string{"outcome"},
)

// ── Session ──────────────────────────────────────────────────────────────────

// SessionEventsTotal counts session lifecycle events.
// Label:
//   - event: "login", "login_failed", "logout" or "expired"
var SessionEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_total",
		Help:      "Total number of session lifecycle events.",
	},
	[]string{"event"},
)

// ── Backend ──────────────────────────────────────────────────────────────────

// BackendRequestDuration measures round trips to the HR backend.
// Labels:
//   - method: HTTP method
//   - status: response status code, "0" when the backend was unreachable
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of requests sent to the HR backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "status"},
)

// ObserveBackend has the signature of backend.Observer.
func ObserveBackend(method string, status int, elapsed time.Duration) {
	BackendRequestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ── Clock ────────────────────────────────────────────────────────────────────

// ClockSubscribers tracks open clock streams.
var ClockSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "clock_subscribers",
		Help:      "Current number of clients streaming the shared clock.",
	},
)

// ── Forms ────────────────────────────────────────────────────────────────────

// FormValidationFailuresTotal counts rejected form submissions.
// Labels:
//   - form: "registration", "profile" or "password"
//   - field: the first field reported, for coarse hot-spot tracking
var FormValidationFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "form_validation_failures_total",
		Help:      "Total number of form validations that reported at least one error.",
	},
	[]string{"form", "field"},
)
