// Package events defines the engine's outbound event envelope and the Sink
// collaborators that carry it downstream. Publishing is fire-and-forget:
// the engine never blocks a pick on a slow consumer.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Type identifies a draft lifecycle event.
type Type string

const (
	TypeDraftCreated            Type = "DraftCreated"
	TypeParticipantJoined       Type = "ParticipantJoined"
	TypeParticipantLeft         Type = "ParticipantLeft"
	TypeParticipantReadyChanged Type = "ParticipantReadyChanged"
	TypeDraftStarted            Type = "DraftStarted"
	TypePickStarted             Type = "PickStarted"
	TypePickMade                Type = "PickMade"
	TypeAutoPickMade            Type = "AutoPickMade"
	TypeDraftPaused             Type = "DraftPaused"
	TypeDraftResumed            Type = "DraftResumed"
	TypeDraftCompleted          Type = "DraftCompleted"
	TypeDraftCancelled          Type = "DraftCancelled"
	TypeMockDraftCompleted      Type = "MockDraftCompleted"
)

// Event is the envelope every sink receives.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	DraftID   uuid.UUID       `json:"draft_id"`
	Type      Type            `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// New wraps a payload struct in an envelope. Marshal failures are logged and
// produce an envelope with empty data rather than failing the operation that
// emitted the event.
func New(eventType Type, draftID uuid.UUID, payload any) Event {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to marshal event payload")
		data = nil
	}
	return Event{
		ID:        uuid.New(),
		DraftID:   draftID,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// Sink receives engine events. Implementations must be safe for concurrent
// use and must not block the caller for long; the engine publishes from
// inside its per-draft critical section.
type Sink interface {
	Publish(ctx context.Context, event Event)
}

// LogSink writes events to the structured log. It is the default sink when
// nothing else is configured.
type LogSink struct{}

func (LogSink) Publish(_ context.Context, event Event) {
	log.Info().
		Str("event_id", event.ID.String()).
		Str("draft_id", event.DraftID.String()).
		Str("event_type", string(event.Type)).
		Msg("draft event")
}

// MultiSink fans one event out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) Publish(ctx context.Context, event Event) {
	for _, s := range m {
		s.Publish(ctx, event)
	}
}
