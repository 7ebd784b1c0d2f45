// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	MatchCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_candidates",
			Help:    "Number of scored carrier candidates per match run",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	MatchExclusions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_exclusions_total",
			Help: "Carriers dropped by per-carrier hard filters",
		},
		[]string{"reason"},
	)

	LaneLookupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_lane_lookup_failures_total",
			Help: "Preferred lane lookups that failed and were scored as no match",
		},
		[]string{"side"},
	)

	MatchCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_cache_requests_total",
			Help: "Match result cache lookups by outcome",
		},
		[]string{"result"},
	)
)
