// Package draft implements the live draft engine: the registry of active
// sessions, the per-draft single-writer pick executor, and the glue between
// the pick timer scheduler, the auto-pick strategy, and the event sink.
package draft

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/draftarena/engine/internal/draft/events"
	"github.com/draftarena/engine/internal/draft/scheduler"
	"github.com/draftarena/engine/internal/draft/store"
	"github.com/draftarena/engine/internal/metrics"
	"github.com/draftarena/engine/internal/models"
	"github.com/draftarena/engine/internal/pool"
)

// Manual-override allowance each seat starts with. Informational only; the
// engine decrements it when the clock runs a seat out.
const defaultTimeoutAllowance = 3

// Config wires the engine's collaborators. Pool is required; everything
// else has a working default.
type Config struct {
	Pool  pool.Provider
	Sink  events.Sink
	Store store.Store
	Clock clockwork.Clock
}

// Engine is the process-wide draft registry and the sole mutation point for
// every session it holds. All mutation of one draft is serialized through
// that draft's session lock.
type Engine struct {
	clock    clockwork.Clock
	pool     pool.Provider
	sink     events.Sink
	store    store.Store
	sched    *scheduler.Scheduler
	validate *validator.Validate

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

// session pairs a draft aggregate with its serialization point. gen is the
// state generation: bumped on every transition that invalidates an armed
// timer, and checked when a timer fires so stale expiries are dropped.
type session struct {
	mu    sync.Mutex
	draft *models.Draft
	gen   uint64
}

// New builds an engine. Nil Sink falls back to logging, nil Store to a
// no-op, nil Clock to the real clock.
func New(cfg Config) *Engine {
	if cfg.Sink == nil {
		cfg.Sink = events.LogSink{}
	}
	if cfg.Store == nil {
		cfg.Store = store.Noop{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	e := &Engine{
		clock:    cfg.Clock,
		pool:     cfg.Pool,
		sink:     cfg.Sink,
		store:    cfg.Store,
		validate: validator.New(),
		sessions: make(map[uuid.UUID]*session),
	}
	e.sched = scheduler.New(cfg.Clock, e.handleTimeout)
	return e
}

func (e *Engine) session(draftID uuid.UUID) (*session, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[draftID]
	return s, ok
}

// emit hands an event to the sink. Called while holding the session lock so
// consumers observe events in commit order; sinks must not block.
func (e *Engine) emit(ctx context.Context, event events.Event) {
	metrics.EventsPublished.WithLabelValues(string(event.Type)).Inc()
	e.sink.Publish(ctx, event)
}

// handleTimeout is the scheduler callback. A timer firing for a draft that
// is gone, no longer in progress, or has moved on to a newer generation is
// a no-op, never an error.
func (e *Engine) handleTimeout(draftID uuid.UUID, gen uint64) {
	s, ok := e.session(draftID)
	if !ok {
		log.Debug().Str("draft_id", draftID.String()).Msg("timer fired for unknown draft; dropping")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft.Status != models.DraftStatusInProgress || s.gen != gen {
		log.Debug().
			Str("draft_id", draftID.String()).
			Uint64("fired_gen", gen).
			Uint64("current_gen", s.gen).
			Msg("stale pick timer; dropping")
		return
	}

	ctx := context.Background()
	seat := s.draft.ParticipantBySeat(seatForCurrentPick(s.draft))
	if seat == nil {
		log.Error().Str("draft_id", draftID.String()).Msg("no participant for current seat")
		return
	}
	if seat.Timeouts > 0 {
		seat.Timeouts--
	}

	log.Info().
		Str("draft_id", draftID.String()).
		Str("user_id", seat.UserID).
		Int("overall_pick", s.draft.CurrentPick).
		Msg("pick timer expired; auto-picking")

	if err := e.commitAutoPickLocked(ctx, s, seat); err != nil {
		log.Error().Err(err).Str("draft_id", draftID.String()).Msg("auto-pick on timeout failed")
		return
	}
	e.runTurnLocked(ctx, s)
}

// snapshot deep-copies the aggregate so callers can never mutate live state.
func snapshot(d *models.Draft) *models.Draft {
	out := *d
	out.Participants = append([]models.DraftParticipant(nil), d.Participants...)
	out.Picks = append([]models.DraftPick(nil), d.Picks...)
	out.AvailablePlayers = append([]models.DraftPlayer(nil), d.AvailablePlayers...)
	if d.StartedAt != nil {
		t := *d.StartedAt
		out.StartedAt = &t
	}
	if d.CompletedAt != nil {
		t := *d.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}
