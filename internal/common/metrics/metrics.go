// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SlotFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idea_lab_slot_fetches_total",
			Help: "Per-tab slot fetches by outcome (loaded, no_data, failed, stale)",
		},
		[]string{"tab", "outcome"},
	)

	SlotFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "idea_lab_slot_fetch_duration_seconds",
			Help:    "Duration of per-tab slot fetches in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"tab"},
	)

	GenerationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idea_lab_generation_requests_total",
			Help: "Content generation calls by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "idea_lab_generation_duration_seconds",
			Help:    "Duration of content generation calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"kind"},
	)

	RoadmapCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idea_lab_roadmap_cache_lookups_total",
			Help: "Roadmap record lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "idea_lab_active_sessions",
			Help: "Number of detail sessions with an open idea",
		},
	)

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

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idea_lab_http_requests_total",
			Help: "API requests by route and status code",
		},
		[]string{"route", "code"},
	)
)
