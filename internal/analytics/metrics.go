package analytics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kosarica/grooming-service/internal/types"
)

var (
	// analysisDuration tracks the time taken by each service operation.
	analysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grooming_analysis_duration_seconds",
		Help:    "Time taken by analytics operations",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"operation"})

	// analysisErrors tracks failed operations.
	analysisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grooming_analysis_errors_total",
		Help: "Total number of failed analytics operations",
	}, []string{"operation"})

	// alertsGenerated counts alerts by severity.
	alertsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grooming_alerts_generated_total",
		Help: "Total number of alerts generated by severity",
	}, []string{"severity"})

	// transactionsClassified counts persisted classifications by outcome.
	transactionsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grooming_transactions_classified_total",
		Help: "Total number of transactions classified",
	}, []string{"outcome"})
)

// MetricsRecorder records analytics metrics
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordOperation records the duration of an operation and whether it failed
func (m *MetricsRecorder) RecordOperation(operation string, duration time.Duration, err error) {
	analysisDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		analysisErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAlerts counts generated alerts by severity
func (m *MetricsRecorder) RecordAlerts(alerts []types.Alert) {
	for _, a := range alerts {
		alertsGenerated.WithLabelValues(string(a.Severity)).Inc()
	}
}

// RecordClassification counts one persisted classification
func (m *MetricsRecorder) RecordClassification(outcome string) {
	transactionsClassified.WithLabelValues(outcome).Inc()
}
