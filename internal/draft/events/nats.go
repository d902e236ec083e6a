package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// NATSSink publishes every event to a per-type subject under a common
// prefix, e.g. draft.events.PickMade.
type NATSSink struct {
	nc            *nats.Conn
	subjectPrefix string
}

func NewNATSSink(nc *nats.Conn, subjectPrefix string) *NATSSink {
	if subjectPrefix == "" {
		subjectPrefix = "draft.events"
	}
	return &NATSSink{nc: nc, subjectPrefix: subjectPrefix}
}

func (s *NATSSink) Publish(_ context.Context, event Event) {
	subject := fmt.Sprintf("%s.%s", s.subjectPrefix, event.Type)

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("failed to marshal event envelope")
		return
	}

	if err := s.nc.Publish(subject, data); err != nil {
		log.Error().
			Err(err).
			Str("subject", subject).
			Str("draft_id", event.DraftID.String()).
			Msg("failed to publish event to NATS")
	}
}

// ConnectNATS dials NATS with the reconnect handlers the engine ships with.
func ConnectNATS(url string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}
