package signals

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes
const (
	outcomeLive     = "live"
	outcomeCache    = "cache"
	outcomeDisabled = "disabled"
	outcomeFailed   = "failed"
)

var (
	// signalFetches counts how each signal was resolved.
	signalFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grooming_signal_fetch_total",
		Help: "Total number of signal resolutions by signal and outcome",
	}, []string{"signal", "outcome"})

	// signalFetchDuration tracks upstream latency of live calls.
	signalFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grooming_signal_fetch_duration_seconds",
		Help:    "Time taken by upstream signal calls",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"signal"})
)

func recordFetch(signal, outcome string) {
	signalFetches.WithLabelValues(signal, outcome).Inc()
}

func recordFetchDuration(signal string, d time.Duration) {
	signalFetchDuration.WithLabelValues(signal).Observe(d.Seconds())
}
