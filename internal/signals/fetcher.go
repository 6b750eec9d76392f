// Package signals collects the external demand signals (weather, traffic and
// local search interest) used by the opportunity scorer and the alert rules.
//
// Every adapter resolves to live, cached or mock data. A failed call never
// fails the whole snapshot.
package signals

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// Signal kinds, also used as cache key prefixes and metric labels
const (
	KindWeather = "weather"
	KindTraffic = "traffic"
	KindTrends  = "trends"
)

// Location is a pair of WGS84 coordinates
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (l Location) String() string {
	return fmt.Sprintf("%.4f,%.4f", l.Lat, l.Lon)
}

// Fetcher retrieves one signal. Mock must be deterministic and is used
// whenever Enabled is false or Fetch fails.
type Fetcher[T any] interface {
	Kind() string
	Enabled() bool
	Fetch(ctx context.Context, loc Location) (T, error)
	Mock() T
}

// BreakerSettings configures the per-adapter circuit breaker
type BreakerSettings struct {
	// Failures is the number of consecutive failures that opens the breaker
	Failures uint32
	// Timeout is how long the breaker stays open before a trial request
	Timeout time.Duration
}

type breakerFetcher[T any] struct {
	Fetcher[T]
	cb *gobreaker.CircuitBreaker
}

// WithBreaker wraps f so that repeated failures short-circuit to an error
// without touching the network.
func WithBreaker[T any](f Fetcher[T], settings BreakerSettings, logger zerolog.Logger) Fetcher[T] {
	failures := settings.Failures
	if failures == 0 {
		failures = 3
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "signal-" + f.Kind(),
		MaxRequests: 1,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Signal circuit breaker state changed")
		},
	})
	return &breakerFetcher[T]{Fetcher: f, cb: cb}
}

func (b *breakerFetcher[T]) Fetch(ctx context.Context, loc Location) (T, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.Fetcher.Fetch(ctx, loc)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out.(T), nil
}
