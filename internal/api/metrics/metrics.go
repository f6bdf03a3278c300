// Package metrics defines and registers all custom Prometheus metrics for
// the registration service. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default registry at package init via
// promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "registration"

// UpdatesReceivedTotal counts webhook updates accepted for processing.
var UpdatesReceivedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "updates_received_total",
		Help:      "Total number of transport updates accepted by the webhook.",
	},
)

// UpdatesDedupTotal counts webhook redelivery checks.
// Label:
//   - result: "hit" (redelivered, skipped) or "miss" (new update, enqueued)
var UpdatesDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "updates_dedup_total",
		Help:      "Total number of update deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// RegistrationsCompletedTotal counts successfully committed registrations.
var RegistrationsCompletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_completed_total",
		Help:      "Total number of participants successfully registered.",
	},
)

// RegistrationsDuplicateTotal counts inserts rejected by a uniqueness
// constraint at commit time.
// Label:
//   - field: "caller_id", "phone" or "unknown"
var RegistrationsDuplicateTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_duplicate_total",
		Help:      "Total number of registration inserts that lost a uniqueness race, by field.",
	},
	[]string{"field"},
)

// ExportsTotal counts roster export artifacts handed to the transport.
var ExportsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Total number of roster exports generated.",
	},
)

// WipesTotal counts confirmed full store wipes.
var WipesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wipes_total",
		Help:      "Total number of confirmed participant store wipes.",
	},
)

// DispatchErrorsTotal counts failed turns.
// Label:
//   - stage: "dispatch" (handler/store failure) or "send" (transport delivery failure)
var DispatchErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatch_errors_total",
		Help:      "Total number of failed turns, by stage.",
	},
	[]string{"stage"},
)

// DispatchDuration measures one full turn from dequeue to reply delivery.
var DispatchDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "dispatch_duration_seconds",
		Help:      "Duration of one turn from dequeue to reply delivery.",
		Buckets:   prometheus.DefBuckets,
	},
)

// QueueDepth tracks the number of events waiting in each dispatcher worker
// channel.
// Label:
//   - worker_id: numeric worker index
var QueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
