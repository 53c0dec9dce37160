package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Inbound event metrics
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskengine_events_total",
			Help: "Total number of predicted-delay events processed, by outcome",
		},
		[]string{"outcome"},
	)

	RedeliveriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "riskengine_redeliveries_total",
			Help: "Total number of events seen more than once (at-least-once redelivery)",
		},
	)

	DelayFlagMismatchTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "riskengine_delay_flag_mismatch_total",
			Help: "Events where is_delayed disagrees with delay_minutes",
		},
	)

	// Classification metrics
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskengine_classifications_total",
			Help: "Total number of risk classifications, by level",
		},
		[]string{"level"},
	)

	DegradedAssessmentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "riskengine_degraded_assessments_total",
			Help: "Assessments classified with substituted default risk factors",
		},
	)

	// Factor lookup metrics
	FactorLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "riskengine_factor_lookup_duration_seconds",
			Help:    "Duration of risk factor lookups in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	FactorLookupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskengine_factor_lookup_failures_total",
			Help: "Total number of failed risk factor lookups, by cause",
		},
		[]string{"cause"},
	)

	// Outbound publish metrics
	PublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "riskengine_publish_duration_seconds",
			Help:    "Duration of risk assessment publishes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	PublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "riskengine_publish_failures_total",
			Help: "Total number of failed risk assessment publishes",
		},
	)

	// Persistence metrics
	StoreFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "riskengine_store_failures_total",
			Help: "Total number of failed assessment history writes",
		},
	)

	// DLQ metrics
	DLQWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskengine_dlq_written_total",
			Help: "Total number of records routed to the dead-letter queue, by reason",
		},
		[]string{"reason"},
	)
)
