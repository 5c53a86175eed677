// Package metrics defines the custom Prometheus metrics of the user service.
// All metrics register with the default registry on import through promauto,
// and are exposed by the /metrics route next to the echoprometheus HTTP
// metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// ── Session metrics ───────────────────────────────────────────────────────────

// AuthOperationsTotal counts session and account operations at the HTTP
// boundary.
// Labels:
//   - operation: "signup", "login", "logout", "refresh", "change_password", "update_account", ...
//   - result: "ok" or the error kind ("validation", "unauthorized", "conflict", ...)
var AuthOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_operations_total",
		Help:      "Total number of session and account operations, by outcome.",
	},
	[]string{"operation", "result"},
)

// TokensIssuedTotal counts minted tokens.
// Label:
//   - type: "access" or "refresh"
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of tokens issued, by token type.",
	},
	[]string{"type"},
)

// RefreshRejectionsTotal counts refused refresh attempts.
// Label:
//   - reason: "missing", "forbidden", or "error" for failures that are not a rejected token
var RefreshRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_rejections_total",
		Help:      "Total number of rejected refresh-token exchanges.",
	},
	[]string{"reason"},
)

// ── Media metrics ─────────────────────────────────────────────────────────────

// MediaUploadsTotal counts uploads to the media host.
// Labels:
//   - kind: "avatars" or "covers"
//   - result: "ok", "decode_error", "put_error"
var MediaUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_uploads_total",
		Help:      "Total number of media uploads, by kind and result.",
	},
	[]string{"kind", "result"},
)

// MediaUploadDuration measures the time from staged file to stored object.
var MediaUploadDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "media_upload_duration_seconds",
		Help:      "Duration of media uploads including image normalisation.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsDroppedTotal counts audit events discarded because their
// dispatcher shard was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped because the dispatcher queue was full.",
	},
)

// AuditEventsWrittenTotal counts audit events by persistence outcome.
// Label:
//   - result: "ok" or "error"
var AuditEventsWrittenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_written_total",
		Help:      "Total number of audit events handed to the audit repository.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks pending events per dispatcher worker.
// Label:
//   - worker_id: numeric worker index
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// WorkerLabel formats a worker index as a label value.
func WorkerLabel(id int) string {
	return strconv.Itoa(id)
}
