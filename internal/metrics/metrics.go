// Package metrics defines the Prometheus metrics of the jobboard client core
// and the development backend. Metrics register with the default registry on
// package init through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jobboard"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login and verification attempts.
// Labels:
//   - realm: "standard" or "admin"
//   - result: "ok" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by realm and result.",
	},
	[]string{"realm", "result"},
)

// GuardDecisionsTotal counts route guard outcomes.
// Label:
//   - outcome: "allowed", "login" (liveness gate failed) or "denied" (role gate failed)
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by outcome.",
	},
	[]string{"outcome"},
)

// ── Notification feed metrics ─────────────────────────────────────────────────

// FeedUnread mirrors the feed's unread counter.
var FeedUnread = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_unread",
		Help:      "Current value of the notification feed unread counter.",
	},
)

// FeedRollbacksTotal counts optimistic mutations reverted after a REST failure.
// Label:
//   - op: "mark_read", "mark_many_read", "mark_all_read", "delete"
var FeedRollbacksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_rollbacks_total",
		Help:      "Total number of optimistic feed mutations rolled back.",
	},
	[]string{"op"},
)

// StaleResponsesTotal counts fetch responses discarded by the staleness check.
// Label:
//   - op: "list" or "unread_count"
var StaleResponsesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_responses_total",
		Help:      "Total number of out-of-order fetch responses discarded.",
	},
	[]string{"op"},
)

// ── Push metrics ──────────────────────────────────────────────────────────────

// PushEventsTotal counts push events received by the client, by type.
var PushEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "push_events_total",
		Help:      "Total number of push events received, by notification type.",
	},
	[]string{"type"},
)

// PushConnectFailuresTotal counts failed or dropped push connections.
var PushConnectFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "push_connect_failures_total",
		Help:      "Total number of push channel connection failures.",
	},
)

// PushDeliveriesTotal counts backend push deliveries.
// Label:
//   - result: "sent", "no_listener", "dropped" (queue full) or "error"
var PushDeliveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "push_deliveries_total",
		Help:      "Total number of push deliveries attempted by the backend.",
	},
	[]string{"result"},
)

// PushQueueDepth tracks pending deliveries per dispatcher worker.
var PushQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "push_queue_depth",
		Help:      "Current number of deliveries pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Backend metrics ───────────────────────────────────────────────────────────

// NotificationsCreatedTotal counts notifications created by the backend.
var NotificationsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_created_total",
		Help:      "Total number of notifications created, by type.",
	},
	[]string{"type"},
)

// OTPIssuedTotal counts verification codes issued by the backend.
var OTPIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_issued_total",
		Help:      "Total number of one-time verification codes issued.",
	},
)
