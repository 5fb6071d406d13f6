package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ─── Assignments ────────────────────────────────────────────────────────────

	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "assignment",
		Name:      "transitions_total",
		Help:      "Task request transitions, labelled by action and outcome.",
	}, []string{"action", "outcome"})

	// ─── Ledger ─────────────────────────────────────────────────────────────────

	LedgerOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "ledger",
		Name:      "operations_total",
		Help:      "Balance mutations, labelled by payment type.",
	}, []string{"type"})

	LedgerCreditsMoved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "ledger",
		Name:      "credits_moved_total",
		Help:      "Credits moved through the ledger, labelled by payment type.",
	}, []string{"type"})

	// ─── Disputes ───────────────────────────────────────────────────────────────

	DisputesResolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "dispute",
		Name:      "resolved_total",
		Help:      "Resolved disputes, labelled by moderator action.",
	}, []string{"action"})

	SweepRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "dispute",
		Name:      "sweep_runs_total",
		Help:      "Stale-dispute sweeps executed by this instance.",
	})

	SweepFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "dispute",
		Name:      "sweep_item_failures_total",
		Help:      "Stale disputes the sweep failed to resolve.",
	})

	// ─── Payments ───────────────────────────────────────────────────────────────

	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "payment",
		Name:      "webhook_events_total",
		Help:      "Payment webhook deliveries, labelled by outcome.",
	}, []string{"outcome"})

	PartialFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "payment",
		Name:      "partial_failures_total",
		Help:      "Operations that need manual reconciliation.",
	}, []string{"operation"})
)
