// Package metrics defines and registers all custom Prometheus metrics for the
// order-management service. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "orderdesk"

// ── Command metrics ───────────────────────────────────────────────────────────

// CommandsExecutedTotal counts dispatched commands by outcome.
// Labels:
//   - command: the command name (e.g. "create_order", "delete_user")
//   - outcome: "ok", "error", or "noop" (blank-target precondition miss)
var CommandsExecutedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_executed_total",
		Help:      "Total number of commands executed, by command and outcome.",
	},
	[]string{"command", "outcome"},
)

// AuditEntriesTotal counts audit entries successfully appended.
var AuditEntriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_entries_total",
		Help:      "Total number of audit log entries appended.",
	},
)

// CommandQueueDepth tracks commands waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var CommandQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "command_queue_depth",
		Help:      "Current number of commands pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Feed metrics ──────────────────────────────────────────────────────────────

// FeedSnapshotsTotal counts full-replacement snapshots published per feed.
// Label:
//   - feed: "users", "orders", "user_orders", or "audit_logs"
var FeedSnapshotsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_snapshots_total",
		Help:      "Total number of live-query snapshots published, by feed.",
	},
	[]string{"feed"},
)

// FeedErrorsTotal counts upstream delivery errors per feed. The previous
// snapshot is retained on error, so these mark staleness, not data loss.
var FeedErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_errors_total",
		Help:      "Total number of live-query delivery errors, by feed.",
	},
	[]string{"feed"},
)

// FeedSubscribers tracks currently attached snapshot observers.
var FeedSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_subscribers",
		Help:      "Current number of attached feed subscribers.",
	},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionsActive tracks sessions currently registered with the identity
// provider adapter.
var SessionsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Current number of active sessions.",
	},
)
