package changefeed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// changeEvents counts received change events.
	changeEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grooming_changefeed_events_total",
		Help: "Total number of change events by collection and operation",
	}, []string{"collection", "operation"})

	// recomputes counts debounced recompute runs.
	recomputes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grooming_recompute_total",
		Help: "Total number of recomputations triggered by changes",
	}, []string{"outcome"})
)
