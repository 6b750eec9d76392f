// Package app builds the components shared by the server and the CLI from
// the loaded configuration.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/kosarica/grooming-service/config"
	"github.com/kosarica/grooming-service/internal/analytics"
	"github.com/kosarica/grooming-service/internal/availability"
	"github.com/kosarica/grooming-service/internal/calendar"
	httpclient "github.com/kosarica/grooming-service/internal/http"
	"github.com/kosarica/grooming-service/internal/signals"
	"github.com/kosarica/grooming-service/internal/types"
)

// NewLogger builds the process logger. Console output is used unless the
// format is json.
func NewLogger(cfg config.LoggingConfig, out io.Writer, service string) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, NoColor: cfg.NoColor, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", service).Logger()
}

// BusinessLocation is the shop coordinates
func BusinessLocation(cfg *config.Config) signals.Location {
	return signals.Location{Lat: cfg.Business.Latitude, Lon: cfg.Business.Longitude}
}

// NewCollector wires the signal adapters, each behind a circuit breaker, and
// the Redis cache when enabled. The returned close function releases the
// cache connection.
func NewCollector(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*signals.Collector, func(), error) {
	client := httpclient.NewClient(httpclient.Config{
		RequestsPerSecond: cfg.Signals.RequestsPerSecond,
		Burst:             1,
		Timeout:           cfg.Signals.Timeout,
	})
	breaker := signals.BreakerSettings{Failures: cfg.Signals.BreakerFailures, Timeout: cfg.Signals.BreakerTimeout}
	reference := signals.Location{Lat: cfg.Business.ReferenceLatitude, Lon: cfg.Business.ReferenceLongitude}

	weather := signals.WithBreaker[types.Weather](signals.NewWeatherAdapter(client, cfg.Signals.WeatherBaseURL, cfg.Signals.WeatherAPIKey), breaker, logger)
	traffic := signals.WithBreaker[types.Traffic](signals.NewTrafficAdapter(client, cfg.Signals.TrafficBaseURL, cfg.Signals.MapsAPIKey, reference), breaker, logger)
	trends := signals.WithBreaker[types.Trends](signals.NewPlacesAdapter(client, cfg.Signals.PlacesBaseURL, cfg.Signals.MapsAPIKey,
		cfg.Business.CompetitorKeyword, cfg.Business.CompetitorRadiusM, cfg.Signals.ReviewSaturation), breaker, logger)

	var cache signals.Cache
	closeFn := func() {}
	if cfg.Redis.Enabled {
		rc, err := signals.NewRedisCache(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		cache = rc
		closeFn = func() {
			if err := rc.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close redis")
			}
		}
	}

	collector := signals.NewCollector(weather, traffic, trends, cache, signals.CollectorConfig{
		Timeout:  cfg.Signals.Timeout,
		CacheTTL: cfg.Signals.CacheTTL,
	}, logger)
	return collector, closeFn, nil
}

// NewService builds the analytics service
func NewService(cfg *config.Config, store analytics.Store, collector analytics.SignalCollector, logger zerolog.Logger) (*analytics.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return analytics.NewService(store, collector, analytics.Config{
		Location:        loc,
		Business:        BusinessLocation(cfg),
		Capacity:        cfg.Business.BlockCapacity,
		Blocks:          availability.DefaultBlocks(),
		SegmentLookback: time.Duration(cfg.Business.SegmentLookbackDays) * 24 * time.Hour,
	}, logger), nil
}

// Grid is the calendar geometry from the business hours
func Grid(cfg *config.Config) calendar.Grid {
	return calendar.Grid{
		Slot:         time.Duration(cfg.Business.SlotMinutes) * time.Minute,
		DayStartHour: cfg.Business.DayStartHour,
		DayEndHour:   cfg.Business.DayEndHour,
	}
}
