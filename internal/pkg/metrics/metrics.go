// Package metrics defines the custom Prometheus metrics of the task manager
// API. Metrics register with the default registry on package init through
// promauto and are exposed on /metrics by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskmanager"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - outcome: "success", "unknown_account", "invalid_password", "rate_limited", "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// SessionRejectionsTotal counts requests turned away by the session guard.
// Label:
//   - reason: "missing", "revoked", "invalid", "expired", "store_error"
var SessionRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_rejections_total",
		Help:      "Total number of requests rejected by the session guard.",
	},
	[]string{"reason"},
)

// RevocationsTotal counts tokens written to the revocation list.
var RevocationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_revocations_total",
		Help:      "Total number of session tokens revoked by logout.",
	},
)

// ── Cache metrics ─────────────────────────────────────────────────────────────

// CacheLookupsTotal counts response cache lookups.
// Labels:
//   - namespace: key namespace (e.g. "tasks", "user:profiles")
//   - result: "hit", "miss" or "error" (store failure, served as a miss)
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of response cache lookups, by key namespace and result.",
	},
	[]string{"namespace", "result"},
)

// ── Task metrics ──────────────────────────────────────────────────────────────

// TasksWrittenTotal counts task mutations.
// Label:
//   - op: "create", "update" or "delete"
var TasksWrittenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_written_total",
		Help:      "Total number of task mutations, by operation.",
	},
	[]string{"op"},
)
