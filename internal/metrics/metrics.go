package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
	OutcomeDropped  = "dropped"
	OutcomeDiscard  = "discarded"
)

var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_uploads_total",
			Help: "File uploads by outcome",
		},
		[]string{"outcome"},
	)

	DeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_deletes_total",
			Help: "File deletions by outcome",
		},
		[]string{"outcome"},
	)

	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Project submissions by outcome",
		},
		[]string{"outcome"},
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_backend_request_duration_seconds",
			Help:    "Duration of calls to the matching backend in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "intake_active_sessions",
			Help: "Number of wizards currently held in memory",
		},
	)
)

// ObserveBackend records one backend call started at start.
func ObserveBackend(operation string, start time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	BackendRequestDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}
