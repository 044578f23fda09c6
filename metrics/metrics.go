// Package metrics exposes Prometheus counters for the submission pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subm_dispatches_total",
			Help: "Execution requests handed to the execution collaborator.",
		},
		[]string{"kind"},
	)
	dispatchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subm_dispatch_failures_total",
			Help: "Execution requests that could not be enqueued.",
		},
	)
	transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subm_status_transitions_total",
			Help: "Accepted submission status transitions.",
		},
		[]string{"from", "to"},
	)
	rejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subm_status_rejections_total",
			Help: "Rejected status callbacks by reason.",
		},
		[]string{"reason"},
	)
	exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "results_exports_total",
			Help: "Rendered leaderboard exports by format.",
		},
		[]string{"format"},
	)
	migrated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "phase_migrated_submissions_total",
			Help: "Submissions cloned into another phase.",
		},
	)
)

func RecordDispatch(scoring bool) {
	kind := "run"
	if scoring {
		kind = "scoring"
	}
	dispatches.WithLabelValues(kind).Inc()
}

func RecordDispatchFailure() {
	dispatchFailures.Inc()
}

func RecordTransition(from, to string) {
	transitions.WithLabelValues(from, to).Inc()
}

func RecordRejection(reason string) {
	rejections.WithLabelValues(reason).Inc()
}

func RecordExport(format string) {
	exports.WithLabelValues(format).Inc()
}

func RecordMigrated(n int) {
	migrated.Add(float64(n))
}
