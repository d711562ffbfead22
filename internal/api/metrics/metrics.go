// Package metrics defines the custom Prometheus metrics for the
// reimbursement API. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry at
// import time; the /metrics endpoint is mounted by the router.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ers"

// ReimbsCreatedTotal counts newly submitted reimbursements by category.
var ReimbsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reimbursements_created_total",
		Help:      "Total number of reimbursements submitted, by type.",
	},
	[]string{"type"},
)

// DecisionsProcessedTotal counts decisions that reached the audit trail.
// Label:
//   - status: "Approved" or "Denied"
var DecisionsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decisions_processed_total",
		Help:      "Total number of approve/deny decisions successfully audited.",
	},
	[]string{"status"},
)

// DecisionErrorsTotal counts decisions that failed audit processing.
// Label:
//   - reason: short description of the failure (e.g. "process_failed")
var DecisionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decision_errors_total",
		Help:      "Total number of decisions that failed audit processing.",
	},
	[]string{"reason"},
)

// AuditQueueDepth tracks the number of decisions waiting in each worker
// channel.
// Label:
//   - worker_id: numeric worker index ("0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of decisions pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// DecisionProcessingDuration measures how long a decision takes from
// dequeue to persistence.
// Label:
//   - status: the decision status, or "error" on failure
var DecisionProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "decision_processing_duration_seconds",
		Help:      "Duration of decision audit processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"status"},
)

// DecisionTimer measures a single decision's processing duration.
type DecisionTimer struct {
	start time.Time
}

// StartDecisionTimer begins timing one decision.
func StartDecisionTimer() DecisionTimer {
	return DecisionTimer{start: time.Now()}
}

// Stop records the elapsed time under the given status label.
func (t DecisionTimer) Stop(status string) {
	DecisionProcessingDuration.WithLabelValues(status).Observe(time.Since(t.start).Seconds())
}
