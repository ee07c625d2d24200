package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "resumeforge", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "resumeforge", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	HistoryOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "resumeforge", Name: "history_operations_total", Help: "History operations by kind and whether they changed the present document."},
		[]string{"op", "result"},
	)
	ReconcileEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "resumeforge", Name: "reconcile_entries_total", Help: "Identified entries seen by the reconciler, by collection and outcome."},
		[]string{"collection", "outcome"},
	)
	RewriteCommits = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "resumeforge", Name: "rewrite_commits_total", Help: "Rewrite results by outcome (committed, discarded, invalid, failed)."},
		[]string{"outcome"},
	)
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "resumeforge", Name: "active_sessions", Help: "Editing sessions currently held in memory."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(HistoryOperations)
	reg.MustRegister(ReconcileEntries)
	reg.MustRegister(RewriteCommits)
	reg.MustRegister(ActiveSessions)
}

// HistoryResult labels a history operation by whether it changed anything.
func HistoryResult(changed bool) string {
	if changed {
		return "changed"
	}
	return "noop"
}
