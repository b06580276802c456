// Package metrics defines the custom Prometheus metrics of the access API.
// Every metric is registered with the default registry through promauto at
// package initialisation and served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "access"

const (
	ResultAllowed = "allowed"
	ResultDenied  = "denied"
)

// ── Authorisation metrics ─────────────────────────────────────────────────────

// AuthzDecisionsTotal counts guard decisions.
// Labels:
//   - requirement: the evaluated requirement (e.g. "view_team", "any(a,b)")
//   - result: "allowed" or "denied"
var AuthzDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_decisions_total",
		Help:      "Total number of authorisation decisions taken by the route guard.",
	},
	[]string{"requirement", "result"},
)

// AuthzDenialsTotal counts refused requests.
// Label:
//   - reason: unauthenticated, invalid_role, permission_denied, role_denied, unmapped_route
var AuthzDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denials_total",
		Help:      "Total number of requests refused by the route guard, by reason.",
	},
	[]string{"reason"},
)

// ── Security audit metrics ────────────────────────────────────────────────────

// SecurityEventsDroppedTotal counts denial events discarded because the
// worker responsible for the tenant was saturated.
var SecurityEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "security_events_dropped_total",
		Help:      "Total number of security events dropped because the audit queue was full.",
	},
)

// SecurityEventsQueueDepth tracks pending events per audit worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var SecurityEventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "security_events_queue_depth",
		Help:      "Current number of security events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)
