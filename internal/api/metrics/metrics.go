// Package metrics defines and registers all custom Prometheus metrics for the
// telecom CRM API. It is the single source of truth for metric names, labels,
// and help strings. Metrics self-register with the default registry via
// promauto at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crm"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Labels:
//   - role: the normalized role of the account ("unknown" when the attempt fails
//     before a user is resolved)
//   - result: "ok" or "failed"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by role and result.",
	},
	[]string{"role", "result"},
)

// ── Provisioning metrics ──────────────────────────────────────────────────────

// CustomersProvisionedTotal counts auto-provisioning outcomes at login and
// dashboard access.
// Label:
//   - result: "created", "existing", or "error"
var CustomersProvisionedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "customers_provisioned_total",
		Help:      "Total number of customer auto-provisioning checks, by outcome.",
	},
	[]string{"result"},
)

// ── Upstream sync metrics ─────────────────────────────────────────────────────

// UpstreamSyncAttemptsTotal counts individual verb attempts against the legacy
// billing backend.
// Labels:
//   - method: HTTP verb of the attempt ("PUT", "PATCH", "POST")
//   - result: "ok", "method_not_allowed", or "error"
var UpstreamSyncAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_sync_attempts_total",
		Help:      "Total number of upstream customer sync attempts, by verb and result.",
	},
	[]string{"method", "result"},
)

// UpstreamSyncDuration measures the full sync call including verb fallback.
// Label:
//   - result: "ok" or "error"
var UpstreamSyncDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_sync_duration_seconds",
		Help:      "Duration of a customer sync to the legacy backend, fallback included.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the current number of events waiting in each audit
// writer channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each writer channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsWrittenTotal counts audit events persisted or dropped.
// Label:
//   - result: "ok" or "error"
var AuditEventsWrittenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_written_total",
		Help:      "Total number of audit events written to storage, by result.",
	},
	[]string{"result"},
)
