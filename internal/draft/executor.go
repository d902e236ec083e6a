package draft

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/draftarena/engine/internal/draft/autopick"
	"github.com/draftarena/engine/internal/draft/events"
	"github.com/draftarena/engine/internal/draft/order"
	"github.com/draftarena/engine/internal/metrics"
	"github.com/draftarena/engine/internal/models"
)

// MakePickRequest is a manual pick submission.
type MakePickRequest struct {
	DraftID      uuid.UUID `json:"draft_id"`
	UserID       string    `json:"user_id"`
	PlayerID     string    `json:"player_id"`
	AuctionPrice *float64  `json:"auction_price,omitempty"`
}

func seatForCurrentPick(d *models.Draft) int {
	return order.Seat(d.Settings.DraftOrder, d.CurrentRound, d.CurrentPick, len(d.Participants))
}

// StartDraft forces the start transition without waiting for readiness.
func (e *Engine) StartDraft(ctx context.Context, draftID uuid.UUID) error {
	s, ok := e.session(draftID)
	if !ok {
		return ErrDraftNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft

	if d.Status != models.DraftStatusScheduled && d.Status != models.DraftStatusWaitingForPlayers {
		return fmt.Errorf("%w: draft is %s", ErrNotReady, d.Status)
	}
	if len(d.Participants) < 2 {
		return fmt.Errorf("%w: need at least 2 participants", ErrNotReady)
	}

	e.startLocked(ctx, s)
	return nil
}

// startLocked performs the IN_PROGRESS transition and puts the first seat
// on the clock. Caller holds the session lock.
func (e *Engine) startLocked(ctx context.Context, s *session) {
	d := s.draft
	now := e.clock.Now().UTC()

	d.Status = models.DraftStatusInProgress
	d.CurrentRound = 1
	d.CurrentPick = 1
	d.StartedAt = &now
	s.gen++

	picker := d.ParticipantBySeat(seatForCurrentPick(d))
	d.CurrentPickerID = picker.UserID

	metrics.DraftsActive.Inc()
	e.emit(ctx, events.New(events.TypeDraftStarted, d.ID, events.DraftStartedPayload{
		DraftID:     d.ID.String(),
		StartedAt:   now,
		TotalRounds: d.Settings.TotalRounds,
		TotalPicks:  d.TotalPicks(),
		FirstPicker: picker.UserID,
	}))

	log.Info().
		Str("draft_id", d.ID.String()).
		Int("participants", len(d.Participants)).
		Int("total_picks", d.TotalPicks()).
		Msg("draft started")

	e.runTurnLocked(ctx, s)
}

// MakePick is the manual submission path. Validation is all-or-nothing: no
// state changes unless every check passes.
func (e *Engine) MakePick(ctx context.Context, req MakePickRequest) (*models.DraftPick, error) {
	s, ok := e.session(req.DraftID)
	if !ok {
		return nil, ErrDraftNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft

	switch d.Status {
	case models.DraftStatusInProgress:
	case models.DraftStatusCancelled:
		return nil, ErrDraftCancelled
	default:
		return nil, ErrDraftNotInProgress
	}

	picker := d.ParticipantBySeat(seatForCurrentPick(d))
	if picker == nil || picker.UserID != req.UserID {
		metrics.PickRejections.WithLabelValues("not_your_turn").Inc()
		return nil, ErrNotYourTurn
	}

	player, ok := findAvailable(d, req.PlayerID)
	if !ok {
		metrics.PickRejections.WithLabelValues("player_unavailable").Inc()
		return nil, ErrPlayerUnavailable
	}

	if d.Settings.IsAuction && req.AuctionPrice != nil {
		if picker.TotalSpent+*req.AuctionPrice > d.Settings.AuctionBudget {
			metrics.PickRejections.WithLabelValues("budget_exceeded").Inc()
			return nil, fmt.Errorf("%w: spent %.2f of %.2f, bid %.2f",
				ErrBudgetExceeded, picker.TotalSpent, d.Settings.AuctionBudget, *req.AuctionPrice)
		}
	}

	pick := e.commitPickLocked(ctx, s, picker, player, req.AuctionPrice, false)
	e.runTurnLocked(ctx, s)
	return &pick, nil
}

// PauseDraft freezes an in-progress draft and disarms its timer.
func (e *Engine) PauseDraft(ctx context.Context, draftID uuid.UUID, reason string) error {
	s, ok := e.session(draftID)
	if !ok {
		return ErrDraftNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft

	if d.Status != models.DraftStatusInProgress {
		return fmt.Errorf("%w: only an in-progress draft can be paused", ErrInvalidState)
	}

	s.gen++
	e.sched.Cancel(d.ID)
	d.Status = models.DraftStatusPaused

	e.emit(ctx, events.New(events.TypeDraftPaused, d.ID, events.DraftPausedPayload{
		DraftID:  d.ID.String(),
		PausedAt: e.clock.Now().UTC(),
		Reason:   reason,
	}))
	log.Info().Str("draft_id", d.ID.String()).Str("reason", reason).Msg("draft paused")
	return nil
}

// ResumeDraft puts a paused draft back on the clock with a fresh full
// countdown for the current seat.
func (e *Engine) ResumeDraft(ctx context.Context, draftID uuid.UUID) error {
	s, ok := e.session(draftID)
	if !ok {
		return ErrDraftNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft

	if d.Status != models.DraftStatusPaused {
		return fmt.Errorf("%w: only a paused draft can be resumed", ErrInvalidState)
	}

	d.Status = models.DraftStatusInProgress
	s.gen++

	e.emit(ctx, events.New(events.TypeDraftResumed, d.ID, events.DraftResumedPayload{
		DraftID:   d.ID.String(),
		ResumedAt: e.clock.Now().UTC(),
	}))
	log.Info().Str("draft_id", d.ID.String()).Msg("draft resumed")

	e.runTurnLocked(ctx, s)
	return nil
}

// CancelDraft moves a non-terminal draft to CANCELLED and removes it from
// pick processing. In-flight submissions racing this observe the new status
// and fail with ErrDraftCancelled.
func (e *Engine) CancelDraft(ctx context.Context, draftID uuid.UUID) error {
	s, ok := e.session(draftID)
	if !ok {
		return ErrDraftNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft

	if d.Status.Terminal() {
		return fmt.Errorf("%w: draft is already %s", ErrInvalidState, d.Status)
	}

	wasRunning := d.Status == models.DraftStatusInProgress || d.Status == models.DraftStatusPaused
	s.gen++
	e.sched.Cancel(d.ID)
	d.Status = models.DraftStatusCancelled
	d.CurrentPickerID = ""

	if wasRunning {
		metrics.DraftsActive.Dec()
	}

	e.emit(ctx, events.New(events.TypeDraftCancelled, d.ID, events.DraftCancelledPayload{
		DraftID:     d.ID.String(),
		CancelledAt: e.clock.Now().UTC(),
		PicksMade:   len(d.Picks),
	}))
	log.Info().Str("draft_id", d.ID.String()).Int("picks_made", len(d.Picks)).Msg("draft cancelled")
	return nil
}

// runTurnLocked drives the draft forward from the current pick: seats that
// opted into auto-pick are drafted for immediately, and the first seat that
// wants to act manually is put on the clock. Caller holds the session lock.
func (e *Engine) runTurnLocked(ctx context.Context, s *session) {
	d := s.draft
	for d.Status == models.DraftStatusInProgress {
		picker := d.ParticipantBySeat(seatForCurrentPick(d))
		if picker == nil {
			log.Error().Str("draft_id", d.ID.String()).Msg("no participant for current seat")
			return
		}
		d.CurrentPickerID = picker.UserID

		if !picker.IsAutoPick {
			e.armTurnLocked(ctx, s, picker)
			return
		}

		if err := e.commitAutoPickLocked(ctx, s, picker); err != nil {
			log.Error().Err(err).Str("draft_id", d.ID.String()).Msg("auto-draft seat failed")
			return
		}
	}
}

// armTurnLocked arms the countdown for the seat on the clock and announces
// the pick window.
func (e *Engine) armTurnLocked(ctx context.Context, s *session, picker *models.DraftParticipant) {
	d := s.draft
	dur := time.Duration(d.Settings.TimePerPickSec) * time.Second
	now := e.clock.Now().UTC()

	e.sched.Arm(d.ID, s.gen, dur)
	e.emit(ctx, events.New(events.TypePickStarted, d.ID, events.PickStartedPayload{
		DraftID:        d.ID.String(),
		UserID:         picker.UserID,
		Round:          d.CurrentRound,
		Pick:           d.CurrentPick,
		PickInRound:    order.PickInRound(d.CurrentPick, len(d.Participants)),
		StartedAt:      now,
		TimeoutAt:      now.Add(dur),
		TimePerPickSec: d.Settings.TimePerPickSec,
	}))
}

// commitAutoPickLocked selects the fallback player for the given seat and
// commits it through the same path as a manual pick.
func (e *Engine) commitAutoPickLocked(ctx context.Context, s *session, picker *models.DraftParticipant) error {
	player, err := autopick.Select(s.draft.AvailablePlayers)
	if err != nil {
		return fmt.Errorf("auto-pick for seat %d: %w", picker.DraftPosition, err)
	}
	e.commitPickLocked(ctx, s, picker, player, nil, true)
	return nil
}

// commitPickLocked is the single point that mutates picks, the available
// pool, and the clock position. Validation is complete before it is called.
func (e *Engine) commitPickLocked(ctx context.Context, s *session, picker *models.DraftParticipant, player models.DraftPlayer, price *float64, isAuto bool) models.DraftPick {
	d := s.draft

	// Invalidate the outgoing timer before any state moves.
	s.gen++
	e.sched.Cancel(d.ID)

	removeAvailable(d, player.ID)

	pick := models.DraftPick{
		ID:            uuid.New(),
		DraftID:       d.ID,
		ParticipantID: picker.ID,
		UserID:        picker.UserID,
		PlayerID:      player.ID,
		PlayerName:    player.Name,
		Position:      player.Position,
		Team:          player.Team,
		Round:         d.CurrentRound,
		Pick:          d.CurrentPick,
		PickInRound:   order.PickInRound(d.CurrentPick, len(d.Participants)),
		AuctionPrice:  price,
		IsAutoPick:    isAuto,
		PickTime:      e.clock.Now().UTC(),
	}
	d.Picks = append(d.Picks, pick)

	if d.Settings.IsAuction && price != nil {
		picker.TotalSpent += *price
	}

	mode := "manual"
	eventType := events.TypePickMade
	if isAuto {
		mode = "auto"
		eventType = events.TypeAutoPickMade
	}
	metrics.PicksTotal.WithLabelValues(mode).Inc()

	e.emit(ctx, events.New(eventType, d.ID, events.PickMadePayload{
		DraftID:      d.ID.String(),
		PickID:       pick.ID.String(),
		UserID:       picker.UserID,
		TeamName:     picker.TeamName,
		PlayerID:     player.ID,
		PlayerName:   player.Name,
		Position:     player.Position,
		Round:        pick.Round,
		Pick:         pick.Pick,
		PickInRound:  pick.PickInRound,
		AuctionPrice: price,
		IsAutoPick:   isAuto,
		MadeAt:       pick.PickTime,
	}))
	if err := e.store.PickMade(ctx, d.ID, &pick); err != nil {
		log.Warn().Err(err).Str("draft_id", d.ID.String()).Msg("store hook pickMade failed")
	}

	log.Info().
		Str("draft_id", d.ID.String()).
		Str("user_id", picker.UserID).
		Str("player", player.Name).
		Int("overall_pick", pick.Pick).
		Bool("auto", isAuto).
		Msg("pick committed")

	d.CurrentPick++
	if d.CurrentPick > d.TotalPicks() {
		e.completeLocked(ctx, s)
		return pick
	}

	d.CurrentRound = order.RoundOf(d.CurrentPick, len(d.Participants))
	d.CurrentPickerID = d.ParticipantBySeat(seatForCurrentPick(d)).UserID
	return pick
}

// completeLocked finishes the draft once the pick budget is exhausted.
func (e *Engine) completeLocked(ctx context.Context, s *session) {
	d := s.draft
	now := e.clock.Now().UTC()

	d.Status = models.DraftStatusCompleted
	d.CompletedAt = &now
	d.CurrentPickerID = ""
	s.gen++
	e.sched.Cancel(d.ID)

	metrics.DraftsActive.Dec()

	duration := ""
	if d.StartedAt != nil {
		duration = now.Sub(*d.StartedAt).String()
	}
	e.emit(ctx, events.New(events.TypeDraftCompleted, d.ID, events.DraftCompletedPayload{
		DraftID:     d.ID.String(),
		CompletedAt: now,
		Duration:    duration,
		TotalPicks:  len(d.Picks),
	}))
	if err := e.store.DraftCompleted(ctx, d); err != nil {
		log.Warn().Err(err).Str("draft_id", d.ID.String()).Msg("store hook draftCompleted failed")
	}

	log.Info().
		Str("draft_id", d.ID.String()).
		Int("total_picks", len(d.Picks)).
		Str("duration", duration).
		Msg("draft completed")
}

func findAvailable(d *models.Draft, playerID string) (models.DraftPlayer, bool) {
	for _, p := range d.AvailablePlayers {
		if p.ID == playerID {
			return p, true
		}
	}
	return models.DraftPlayer{}, false
}

func removeAvailable(d *models.Draft, playerID string) {
	for i := range d.AvailablePlayers {
		if d.AvailablePlayers[i].ID == playerID {
			d.AvailablePlayers = append(d.AvailablePlayers[:i], d.AvailablePlayers[i+1:]...)
			return
		}
	}
}
