package changefeed

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const eventBuffer = 1024

// RecomputeFunc rebuilds derived state from scratch. collections lists the
// collections that changed in the window, sorted. It must be idempotent.
type RecomputeFunc func(ctx context.Context, collections []string) error

// Coalescer collapses a burst of change events into one recompute. The
// window opens at the first event and is not extended by later ones, so a
// steady stream still recomputes at least once per window.
type Coalescer struct {
	window    time.Duration
	recompute RecomputeFunc
	events    chan Event
	logger    zerolog.Logger

	// overflow holds the collections of events that found the queue full
	mu         sync.Mutex
	overflow   map[string]struct{}
	overflowed chan struct{}
}

// NewCoalescer creates a coalescer with the given debounce window
func NewCoalescer(window time.Duration, recompute RecomputeFunc, logger zerolog.Logger) *Coalescer {
	if window <= 0 {
		window = 250 * time.Millisecond
	}
	return &Coalescer{
		window:    window,
		recompute: recompute,
		events:     make(chan Event, eventBuffer),
		logger:     logger.With().Str("component", "coalescer").Logger(),
		overflow:   map[string]struct{}{},
		overflowed: make(chan struct{}, 1),
	}
}

// Handle queues an event. It never blocks; when the queue is full only the
// collection is kept and merged into the next window.
func (c *Coalescer) Handle(_ context.Context, ev Event) {
	changeEvents.WithLabelValues(ev.Collection, string(ev.Operation)).Inc()
	select {
	case c.events <- ev:
		return
	default:
	}

	c.mu.Lock()
	if ev.Collection != "" {
		c.overflow[ev.Collection] = struct{}{}
	}
	c.mu.Unlock()
	select {
	case c.overflowed <- struct{}{}:
	default:
	}
	c.logger.Debug().Str("collection", ev.Collection).Msg("Change queue full, event coalesced")
}

func (c *Coalescer) drainOverflow(pending map[string]struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name := range c.overflow {
		pending[name] = struct{}{}
	}
	clear(c.overflow)
}

// Run processes queued events until ctx is cancelled
func (c *Coalescer) Run(ctx context.Context) {
	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending = map[string]struct{}{}
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.events:
			if ev.Collection != "" {
				pending[ev.Collection] = struct{}{}
			}
			if timer == nil {
				timer = time.NewTimer(c.window)
				fire = timer.C
			}
		case <-c.overflowed:
			c.drainOverflow(pending)
			if timer == nil {
				timer = time.NewTimer(c.window)
				fire = timer.C
			}
		case <-fire:
			timer, fire = nil, nil
			c.drainOverflow(pending)
			collections := make([]string, 0, len(pending))
			for name := range pending {
				collections = append(collections, name)
			}
			sort.Strings(collections)
			pending = map[string]struct{}{}
			c.run(ctx, collections)
		}
	}
}

func (c *Coalescer) run(ctx context.Context, collections []string) {
	start := time.Now()
	if err := c.recompute(ctx, collections); err != nil {
		recomputes.WithLabelValues("error").Inc()
		c.logger.Error().Err(err).Strs("collections", collections).Msg("Recompute failed")
		return
	}
	recomputes.WithLabelValues("ok").Inc()
	c.logger.Debug().
		Strs("collections", collections).
		Dur("duration", time.Since(start)).
		Msg("Recomputed after changes")
}
