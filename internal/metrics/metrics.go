package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_submissions_received_total",
			Help: "Total number of submissions accepted at intake",
		},
		[]string{"kind"},
	)

	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_pipeline_runs_total",
			Help: "Total number of pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plan_pipeline_duration_seconds",
			Help:    "Duration of pipeline runs in seconds",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"outcome"},
	)

	EvaluationScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plan_evaluation_score",
			Help:    "Overall score of completed evaluations",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "plan_queue_depth",
			Help: "Number of submissions waiting for a worker",
		},
	)

	ReportCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_report_cache_lookups_total",
			Help: "Report cache lookups by result",
		},
		[]string{"result"},
	)
)

// Pipeline outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeDegraded  = "degraded"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)
