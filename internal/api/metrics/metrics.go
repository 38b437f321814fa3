// Package metrics defines and registers all custom Prometheus metrics for the
// clinic EHR API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto; /metrics exposes that registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ehr"

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEntriesTotal counts audit entries by outcome.
// Labels:
//   - action: CREATE, READ, UPDATE, DELETE
//   - result: "persisted", "failed" (store error) or "dropped" (queue full / closed)
var AuditEntriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_entries_total",
		Help:      "Total number of audit entries handled, by action and result.",
	},
	[]string{"action", "result"},
)

// AuditQueueDepth tracks the number of entries waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit entries pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditWriteDuration measures how long a single audit insert takes.
var AuditWriteDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_write_duration_seconds",
		Help:      "Duration of audit entry persistence from dequeue to store acknowledgement.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RateLimitedTotal counts requests rejected with 429.
// Label:
//   - limiter: "login" or "api"
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by a rate limiter.",
	},
	[]string{"limiter"},
)

// ── Record metrics ────────────────────────────────────────────────────────────

// RecordsCreatedTotal counts newly created clinical records.
// Label:
//   - entity: "patient", "encounter", "prescription"
var RecordsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_created_total",
		Help:      "Total number of clinical records created, by entity type.",
	},
	[]string{"entity"},
)
