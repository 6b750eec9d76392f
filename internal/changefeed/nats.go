package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSSource consumes change events published on a subject hierarchy such as
// grooming.changes.<collection>
type NATSSource struct {
	url     string
	subject string
	logger  zerolog.Logger
}

// NewNATSSource creates a source for the given server and subject
func NewNATSSource(url, subject string, logger zerolog.Logger) *NATSSource {
	return &NATSSource{
		url:     url,
		subject: subject,
		logger:  logger.With().Str("component", "changefeed").Str("source", "nats").Logger(),
	}
}

// Subscribe blocks until ctx is cancelled. When a message omits the
// collection, the last subject token is used.
func (s *NATSSource) Subscribe(ctx context.Context, handler Handler) error {
	nc, err := nats.Connect(s.url,
		nats.Name("grooming-service"),
		nats.Timeout(10*time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				s.logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			s.logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
			handler(ctx, Event{Operation: OpResync})
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer nc.Close()

	sub, err := nc.Subscribe(s.subject, func(msg *nats.Msg) {
		ev, err := decodeMessage(msg.Subject, msg.Data)
		if err != nil {
			s.logger.Warn().Err(err).Str("subject", msg.Subject).Msg("Skipping change message")
			return
		}
		handler(ctx, ev)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.subject, err)
	}
	s.logger.Info().Str("subject", s.subject).Msg("Listening for changes")

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil {
		s.logger.Debug().Err(err).Msg("Unsubscribe failed")
	}
	return nil
}

func decodeMessage(subject string, data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("invalid change payload: %w", err)
	}
	if ev.Collection == "" {
		if i := strings.LastIndex(subject, "."); i >= 0 {
			ev.Collection = subject[i+1:]
		}
	}
	return validate(ev)
}
