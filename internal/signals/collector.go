package signals

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/kosarica/grooming-service/internal/opportunity"
	"github.com/kosarica/grooming-service/internal/types"
)

// Snapshot is every signal at one location plus the opportunity score
// derived from them
type Snapshot struct {
	Location    Location                      `json:"location"`
	Weather     types.Weather                 `json:"weather"`
	Traffic     types.Traffic                 `json:"traffic"`
	Trends      types.Trends                  `json:"trends"`
	Sources     map[string]types.SignalSource `json:"sources"`
	Opportunity opportunity.Result            `json:"opportunity"`
	CollectedAt time.Time                     `json:"collected_at"`
}

// CollectorConfig holds collector options
type CollectorConfig struct {
	// Timeout bounds each upstream call
	Timeout time.Duration
	// CacheTTL is how long live values are cached
	CacheTTL time.Duration
}

// Collector fans out to the signal adapters and assembles a Snapshot
type Collector struct {
	weather Fetcher[types.Weather]
	traffic Fetcher[types.Traffic]
	trends  Fetcher[types.Trends]
	cache   Cache
	config  CollectorConfig
	group   singleflight.Group
	logger  zerolog.Logger
	now     func() time.Time
}

// NewCollector creates a collector. cache may be nil.
func NewCollector(
	weather Fetcher[types.Weather],
	traffic Fetcher[types.Traffic],
	trends Fetcher[types.Trends],
	cache Cache,
	config CollectorConfig,
	logger zerolog.Logger,
) *Collector {
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	return &Collector{
		weather: weather,
		traffic: traffic,
		trends:  trends,
		cache:   cache,
		config:  config,
		logger:  logger.With().Str("component", "signals").Logger(),
		now:     time.Now,
	}
}

// Collect resolves every signal concurrently. It never fails: each signal
// falls back to its mock value. Concurrent calls for the same location share
// one resolution.
func (c *Collector) Collect(ctx context.Context, loc Location) Snapshot {
	v, _, _ := c.group.Do(loc.String(), func() (interface{}, error) {
		return c.collect(ctx, loc), nil
	})
	return v.(Snapshot)
}

func (c *Collector) collect(ctx context.Context, loc Location) Snapshot {
	snap := Snapshot{Location: loc}

	var g errgroup.Group
	g.Go(func() error {
		snap.Weather = resolve(ctx, c, c.weather, loc, func(w *types.Weather, s types.SignalSource) { w.Source = s })
		return nil
	})
	g.Go(func() error {
		snap.Traffic = resolve(ctx, c, c.traffic, loc, func(t *types.Traffic, s types.SignalSource) { t.Source = s })
		return nil
	})
	g.Go(func() error {
		snap.Trends = resolve(ctx, c, c.trends, loc, func(t *types.Trends, s types.SignalSource) { t.Source = s })
		return nil
	})
	_ = g.Wait()

	if snap.Trends.Competitors == nil {
		snap.Trends.Competitors = []types.Competitor{}
	}
	snap.Sources = map[string]types.SignalSource{
		KindWeather: snap.Weather.Source,
		KindTraffic: snap.Traffic.Source,
		KindTrends:  snap.Trends.Source,
	}
	snap.Opportunity = opportunity.Score(snap.Weather, snap.Traffic, snap.Trends)
	snap.CollectedAt = c.now()
	return snap
}

func resolve[T any](ctx context.Context, c *Collector, f Fetcher[T], loc Location, stamp func(*T, types.SignalSource)) T {
	kind := f.Kind()
	mock := func() T {
		v := f.Mock()
		stamp(&v, types.SourceMock)
		return v
	}

	if !f.Enabled() {
		recordFetch(kind, outcomeDisabled)
		return mock()
	}

	key := CacheKey(kind, loc)
	if c.cache != nil {
		var cached T
		ok, err := c.cache.Get(ctx, key, &cached)
		if err != nil {
			c.logger.Warn().Err(err).Str("signal", kind).Msg("Signal cache read failed")
		}
		if ok {
			recordFetch(kind, outcomeCache)
			stamp(&cached, types.SourceCache)
			return cached
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()
	v, err := f.Fetch(fetchCtx, loc)
	recordFetchDuration(kind, time.Since(start))
	if err != nil {
		recordFetch(kind, outcomeFailed)
		c.logger.Warn().Err(err).Str("signal", kind).Bool("fallback", true).Msg("Signal fetch failed, using fallback")
		return mock()
	}

	recordFetch(kind, outcomeLive)
	stamp(&v, types.SourceLive)
	if c.cache != nil && c.config.CacheTTL > 0 {
		if err := c.cache.Set(ctx, key, v, c.config.CacheTTL); err != nil {
			c.logger.Warn().Err(err).Str("signal", kind).Msg("Signal cache write failed")
		}
	}
	return v
}
