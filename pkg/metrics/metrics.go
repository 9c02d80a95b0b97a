package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	PredicatesEvaluatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_predicates_evaluated_total",
			Help: "Total number of predicate evaluations during gather passes (count)",
		},
		[]string{"status"},
	)

	RowsMatchedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_rows_matched_total",
			Help: "Total number of rows returned by record source queries (count)",
		},
	)

	EventsGeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_events_generated_total",
			Help: "Total number of notification events emitted (count)",
		},
	)

	EventsSuppressedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_events_suppressed_total",
			Help: "Total number of events dropped as already delivered (count)",
		},
	)

	PredicateErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_predicate_errors_total",
			Help: "Total number of per-predicate evaluation failures by class (count)",
		},
		[]string{"class"},
	)

	GatherDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_gather_duration_ms",
			Help:    "Duration of a full gather pass in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"status"},
	)

	ActivePredicates = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_active_predicates",
			Help: "Number of stored predicates (count)",
		},
	)

	RecordSourceQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "record_source_query_duration_ms",
			Help:    "Duration of record source queries in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"operation"},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"service", "topic"},
	)
)

var (
	registerEngineOnce  sync.Once
	registerBreakerOnce sync.Once
	registerAdminOnce   sync.Once
	registerBrokerOnce  sync.Once
)

func RegisterEngineMetrics() {
	registerEngineOnce.Do(func() {
		prometheus.MustRegister(
			PredicatesEvaluatedTotal,
			RowsMatchedTotal,
			EventsGeneratedTotal,
			EventsSuppressedTotal,
			PredicateErrorsTotal,
			GatherDuration,
			ActivePredicates,
			RecordSourceQueryDuration,
			RetryAttemptsTotal,
		)
	})
}

func RegisterCircuitBreakerMetrics() {
	registerBreakerOnce.Do(func() {
		prometheus.MustRegister(
			CircuitBreakerState,
			CircuitBreakerRequests,
			CircuitBreakerFailures,
		)
	})
}

func RegisterAdminMetrics() {
	registerAdminOnce.Do(func() {
		prometheus.MustRegister(RateLimitRequestsTotal)
	})
}

func RegisterBrokerMetrics() {
	registerBrokerOnce.Do(func() {
		prometheus.MustRegister(KafkaMessagesWrittenTotal)
	})
}

func ObserveGatherDuration(duration time.Duration, status string) {
	GatherDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func ObserveRecordSourceQueryDuration(duration time.Duration, status string) {
	RecordSourceQueryDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func SetActivePredicates(count int) {
	ActivePredicates.Set(float64(count))
}

func IncPredicateError(class string) {
	PredicateErrorsTotal.WithLabelValues(class).Inc()
}

func IncKafkaMessagesWritten(service, topic string) {
	KafkaMessagesWrittenTotal.WithLabelValues(service, topic).Inc()
}
