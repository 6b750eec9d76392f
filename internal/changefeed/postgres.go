package changefeed

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

const listenerPingInterval = 90 * time.Second

// PostgresSource listens for NOTIFY payloads on a channel
type PostgresSource struct {
	dsn     string
	channel string
	logger  zerolog.Logger
}

// NewPostgresSource creates a source for the given connection string
func NewPostgresSource(dsn, channel string, logger zerolog.Logger) *PostgresSource {
	return &PostgresSource{
		dsn:     dsn,
		channel: channel,
		logger:  logger.With().Str("component", "changefeed").Str("source", "postgres").Logger(),
	}
}

// Subscribe blocks until ctx is cancelled. Malformed payloads are logged and
// skipped. A reconnect yields an OpResync event.
func (s *PostgresSource) Subscribe(ctx context.Context, handler Handler) error {
	listener := pq.NewListener(s.dsn, 2*time.Second, time.Minute, func(event pq.ListenerEventType, err error) {
		if err != nil {
			s.logger.Warn().Err(err).Int("event", int(event)).Msg("Listener connection event")
		}
	})
	defer listener.Close()

	if err := listener.Listen(s.channel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.channel, err)
	}
	s.logger.Info().Str("channel", s.channel).Msg("Listening for changes")

	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if n == nil {
				handler(ctx, Event{Operation: OpResync})
				continue
			}
			ev, err := Decode([]byte(n.Extra))
			if err != nil {
				s.logger.Warn().Err(err).Msg("Skipping change notification")
				continue
			}
			handler(ctx, ev)
		case <-ticker.C:
			go listener.Ping()
		}
	}
}
