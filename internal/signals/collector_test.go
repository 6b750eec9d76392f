package signals

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/grooming-service/internal/types"
)

type fakeFetcher[T any] struct {
	kind    string
	enabled bool
	value   T
	mock    T
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (f *fakeFetcher[T]) Kind() string  { return f.kind }
func (f *fakeFetcher[T]) Enabled() bool { return f.enabled }
func (f *fakeFetcher[T]) Mock() T       { return f.mock }

func (f *fakeFetcher[T]) Fetch(ctx context.Context, _ Location) (T, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
	return f.value, f.err
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.data[key] = b
	c.mu.Unlock()
	return nil
}

type fakes struct {
	weather *fakeFetcher[types.Weather]
	traffic *fakeFetcher[types.Traffic]
	trends  *fakeFetcher[types.Trends]
}

func newFakes(enabled bool) fakes {
	return fakes{
		weather: &fakeFetcher[types.Weather]{
			kind:    KindWeather,
			enabled: enabled,
			value:   types.Weather{TemperatureC: 28, Condition: "Clear"},
			mock:    types.Weather{TemperatureC: 22, UVIndex: 5, Condition: "Clear"},
		},
		traffic: &fakeFetcher[types.Traffic]{
			kind:    KindTraffic,
			enabled: enabled,
			value:   types.Traffic{Level: types.TrafficLow},
			mock:    types.Traffic{Level: types.TrafficMedium},
		},
		trends: &fakeFetcher[types.Trends]{
			kind:    KindTrends,
			enabled: enabled,
			value:   types.Trends{Interest: 90, Competitors: []types.Competitor{{Name: "A"}}},
			mock:    types.Trends{Interest: 65},
		},
	}
}

func (f fakes) collector(cache Cache) *Collector {
	return NewCollector(f.weather, f.traffic, f.trends, cache,
		CollectorConfig{Timeout: time.Second, CacheTTL: time.Minute}, zerolog.Nop())
}

func TestCollect_DisabledUsesMocks(t *testing.T) {
	f := newFakes(false)
	snap := f.collector(nil).Collect(context.Background(), shop)

	assert.Equal(t, types.SourceMock, snap.Weather.Source)
	assert.Equal(t, types.SourceMock, snap.Traffic.Source)
	assert.Equal(t, types.SourceMock, snap.Trends.Source)
	assert.Equal(t, types.TrafficMedium, snap.Traffic.Level)
	assert.NotNil(t, snap.Trends.Competitors)
	assert.Zero(t, f.weather.calls.Load())

	// 100*0.4 + 60*0.2 + 65*0.4 = 78
	assert.Equal(t, 78, snap.Opportunity.Score)
}

func TestCollect_LiveValues(t *testing.T) {
	f := newFakes(true)
	snap := f.collector(nil).Collect(context.Background(), shop)

	assert.Equal(t, types.SourceLive, snap.Weather.Source)
	assert.Equal(t, 28.0, snap.Weather.TemperatureC)
	assert.Equal(t, types.TrafficLow, snap.Traffic.Level)
	assert.Equal(t, 90, snap.Trends.Interest)
	assert.Equal(t, map[string]types.SignalSource{
		KindWeather: types.SourceLive,
		KindTraffic: types.SourceLive,
		KindTrends:  types.SourceLive,
	}, snap.Sources)
	assert.Equal(t, shop, snap.Location)
}

func TestCollect_FailureFallsBackPerSignal(t *testing.T) {
	f := newFakes(true)
	f.traffic.err = errors.New("boom")

	snap := f.collector(nil).Collect(context.Background(), shop)

	assert.Equal(t, types.SourceLive, snap.Weather.Source)
	assert.Equal(t, types.SourceMock, snap.Traffic.Source)
	assert.Equal(t, types.TrafficMedium, snap.Traffic.Level)
	assert.Equal(t, types.SourceLive, snap.Trends.Source)
}

func TestCollect_FailureLogsFallback(t *testing.T) {
	f := newFakes(true)
	f.traffic.err = errors.New("boom")

	var buf bytes.Buffer
	c := NewCollector(f.weather, f.traffic, f.trends, nil,
		CollectorConfig{Timeout: time.Second}, zerolog.New(&buf))
	c.Collect(context.Background(), shop)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, KindTraffic, entry["signal"])
	assert.Equal(t, true, entry["fallback"])
	assert.Equal(t, "signals", entry["component"])
	assert.Equal(t, "boom", entry["error"])
}

func TestCollect_TimeoutFallsBack(t *testing.T) {
	f := newFakes(true)
	f.weather.delay = time.Second
	c := NewCollector(f.weather, f.traffic, f.trends, nil,
		CollectorConfig{Timeout: 20 * time.Millisecond}, zerolog.Nop())

	snap := c.Collect(context.Background(), shop)
	assert.Equal(t, types.SourceMock, snap.Weather.Source)
	assert.Equal(t, 22.0, snap.Weather.TemperatureC)
}

func TestCollect_CancelledContextNeverFails(t *testing.T) {
	f := newFakes(true)
	f.weather.delay = time.Second
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap := f.collector(nil).Collect(ctx, shop)
	assert.Equal(t, types.SourceMock, snap.Weather.Source)
}

func TestCollect_CacheHit(t *testing.T) {
	f := newFakes(true)
	cache := newMapCache()
	c := f.collector(cache)

	first := c.Collect(context.Background(), shop)
	assert.Equal(t, types.SourceLive, first.Weather.Source)

	second := c.Collect(context.Background(), shop)
	assert.Equal(t, types.SourceCache, second.Weather.Source)
	assert.Equal(t, 28.0, second.Weather.TemperatureC)
	assert.Equal(t, int32(1), f.weather.calls.Load())
}

func TestCollect_FailuresAreNotCached(t *testing.T) {
	f := newFakes(true)
	f.weather.err = errors.New("down")
	cache := newMapCache()

	f.collector(cache).Collect(context.Background(), shop)

	_, ok := cache.data[CacheKey(KindWeather, shop)]
	assert.False(t, ok)
}

func TestCollect_ConcurrentCallsShareFetch(t *testing.T) {
	f := newFakes(true)
	f.weather.delay = 100 * time.Millisecond
	c := f.collector(nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap := c.Collect(context.Background(), shop)
			assert.Equal(t, types.SourceLive, snap.Weather.Source)
		}()
	}
	wg.Wait()

	assert.Less(t, f.weather.calls.Load(), int32(5))
}

func TestWithBreaker_OpensAfterFailures(t *testing.T) {
	inner := &fakeFetcher[types.Weather]{kind: KindWeather, enabled: true, err: errors.New("down")}
	f := WithBreaker[types.Weather](inner, BreakerSettings{Failures: 2, Timeout: time.Minute}, zerolog.Nop())

	for i := 0; i < 5; i++ {
		_, err := f.Fetch(context.Background(), shop)
		require.Error(t, err)
	}
	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Equal(t, KindWeather, f.Kind())
}

func TestWithBreaker_PassesValues(t *testing.T) {
	inner := &fakeFetcher[types.Weather]{kind: KindWeather, enabled: true, value: types.Weather{TemperatureC: 12}}
	f := WithBreaker[types.Weather](inner, BreakerSettings{}, zerolog.Nop())

	w, err := f.Fetch(context.Background(), shop)
	require.NoError(t, err)
	assert.Equal(t, 12.0, w.TemperatureC)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "signals:weather:19.4326:-99.1332", CacheKey(KindWeather, shop))
}
