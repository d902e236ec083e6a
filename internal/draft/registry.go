package draft

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/draftarena/engine/internal/draft/events"
	"github.com/draftarena/engine/internal/metrics"
	"github.com/draftarena/engine/internal/models"
)

// CreateDraftRequest carries everything needed to open a new session.
type CreateDraftRequest struct {
	CreatorUserID   string            `json:"creator_user_id" validate:"required"`
	Sport           string            `json:"sport" validate:"required"`
	DraftType       models.DraftType  `json:"draft_type" validate:"required"`
	DraftOrder      models.DraftOrder `json:"draft_order" validate:"required,oneof=STANDARD SNAKE LINEAR THIRD_ROUND_REVERSAL"`
	TotalRounds     int               `json:"total_rounds" validate:"gte=1"`
	TimePerPickSec  int               `json:"time_per_pick_sec" validate:"gte=1"`
	MaxParticipants int               `json:"max_participants" validate:"gte=2"`
	IsAuction       bool              `json:"is_auction"`
	AuctionBudget   float64           `json:"auction_budget" validate:"gte=0"`
}

// ListFilter narrows ListDrafts results. Zero values match everything.
type ListFilter struct {
	Sport     string
	DraftType models.DraftType
	Status    models.DraftStatus
}

// CreateDraft validates the config, loads the sport's player pool, and
// registers a new SCHEDULED session. The pool must cover the full pick
// budget at maximum occupancy.
func (e *Engine) CreateDraft(ctx context.Context, req CreateDraftRequest) (*models.Draft, error) {
	if err := e.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid draft config: %w", err)
	}
	if req.IsAuction && req.AuctionBudget <= 0 {
		return nil, fmt.Errorf("invalid draft config: auction draft requires a positive budget")
	}

	players, err := e.pool.GetPool(ctx, req.Sport)
	if err != nil {
		return nil, fmt.Errorf("load player pool: %w", err)
	}
	if need := req.TotalRounds * req.MaxParticipants; len(players) < need {
		return nil, fmt.Errorf("invalid draft config: pool of %d players cannot cover %d picks", len(players), need)
	}

	d := &models.Draft{
		ID:            uuid.New(),
		CreatorUserID: req.CreatorUserID,
		Settings: models.DraftSettings{
			Sport:           req.Sport,
			DraftType:       req.DraftType,
			DraftOrder:      req.DraftOrder,
			TotalRounds:     req.TotalRounds,
			TimePerPickSec:  req.TimePerPickSec,
			MaxParticipants: req.MaxParticipants,
			IsAuction:       req.IsAuction,
			AuctionBudget:   req.AuctionBudget,
		},
		Status:           models.DraftStatusScheduled,
		AvailablePlayers: players,
		CreatedAt:        e.clock.Now().UTC(),
	}

	e.mu.Lock()
	e.sessions[d.ID] = &session{draft: d}
	e.mu.Unlock()

	metrics.DraftsCreated.Inc()
	e.emit(ctx, events.New(events.TypeDraftCreated, d.ID, events.DraftCreatedPayload{
		DraftID:   d.ID.String(),
		Sport:     d.Settings.Sport,
		DraftType: d.Settings.DraftType,
		Settings:  d.Settings,
		CreatedAt: d.CreatedAt,
		PoolSize:  len(players),
	}))
	if err := e.store.DraftCreated(ctx, d); err != nil {
		log.Warn().Err(err).Str("draft_id", d.ID.String()).Msg("store hook draftCreated failed")
	}

	log.Info().
		Str("draft_id", d.ID.String()).
		Str("sport", d.Settings.Sport).
		Str("draft_order", string(d.Settings.DraftOrder)).
		Int("pool_size", len(players)).
		Msg("draft created")

	return snapshot(d), nil
}

// GetDraft returns a point-in-time copy of a session.
func (e *Engine) GetDraft(_ context.Context, draftID uuid.UUID) (*models.Draft, error) {
	s, ok := e.session(draftID)
	if !ok {
		return nil, ErrDraftNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.draft), nil
}

// ListDrafts returns snapshots of all sessions matching the filter, newest
// first.
func (e *Engine) ListDrafts(_ context.Context, filter ListFilter) []*models.Draft {
	e.mu.RLock()
	sessions := make([]*session, 0, len(e.sessions))
	for _, s := range e.sessions {
		sessions = append(sessions, s)
	}
	e.mu.RUnlock()

	out := make([]*models.Draft, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		d := s.draft
		if (filter.Sport == "" || filter.Sport == d.Settings.Sport) &&
			(filter.DraftType == "" || filter.DraftType == d.Settings.DraftType) &&
			(filter.Status == "" || filter.Status == d.Status) {
			out = append(out, snapshot(d))
		}
		s.mu.Unlock()
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// RemoveDraft drops a terminal session from the registry, handing archival
// off to the persistence collaborator.
func (e *Engine) RemoveDraft(_ context.Context, draftID uuid.UUID) error {
	s, ok := e.session(draftID)
	if !ok {
		return ErrDraftNotFound
	}

	s.mu.Lock()
	terminal := s.draft.Status.Terminal()
	s.mu.Unlock()
	if !terminal {
		return fmt.Errorf("%w: cannot remove a draft that is not completed or cancelled", ErrInvalidState)
	}

	e.sched.Cancel(draftID)
	e.mu.Lock()
	delete(e.sessions, draftID)
	e.mu.Unlock()
	return nil
}

// JoinDraft seats a user in a pre-start draft at the next dense position.
func (e *Engine) JoinDraft(ctx context.Context, draftID uuid.UUID, userID, teamName string) (*models.Draft, error) {
	s, ok := e.session(draftID)
	if !ok {
		return nil, ErrDraftNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft

	if d.Status != models.DraftStatusScheduled && d.Status != models.DraftStatusWaitingForPlayers {
		return nil, ErrDraftAlreadyStarted
	}
	if len(d.Participants) >= d.Settings.MaxParticipants {
		return nil, ErrDraftFull
	}
	if d.ParticipantByUser(userID) != nil {
		return nil, ErrAlreadyJoined
	}

	p := models.DraftParticipant{
		ID:            uuid.New(),
		UserID:        userID,
		TeamName:      teamName,
		DraftPosition: len(d.Participants) + 1,
		Timeouts:      defaultTimeoutAllowance,
		JoinedAt:      e.clock.Now().UTC(),
	}
	d.Participants = append(d.Participants, p)
	if d.Status == models.DraftStatusScheduled {
		d.Status = models.DraftStatusWaitingForPlayers
	}

	e.emit(ctx, events.New(events.TypeParticipantJoined, d.ID, events.ParticipantJoinedPayload{
		DraftID:       d.ID.String(),
		UserID:        userID,
		TeamName:      teamName,
		DraftPosition: p.DraftPosition,
		JoinedAt:      p.JoinedAt,
	}))

	log.Info().
		Str("draft_id", d.ID.String()).
		Str("user_id", userID).
		Int("draft_position", p.DraftPosition).
		Msg("participant joined")

	return snapshot(d), nil
}

// LeaveDraft removes a seat before the draft starts and renumbers the
// remaining seats densely, preserving relative order.
func (e *Engine) LeaveDraft(ctx context.Context, draftID uuid.UUID, userID string) error {
	s, ok := e.session(draftID)
	if !ok {
		return ErrDraftNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft

	switch d.Status {
	case models.DraftStatusInProgress:
		return ErrDraftInProgress
	case models.DraftStatusScheduled, models.DraftStatusWaitingForPlayers:
	default:
		return fmt.Errorf("%w: cannot leave a %s draft", ErrInvalidState, d.Status)
	}

	idx := -1
	for i := range d.Participants {
		if d.Participants[i].UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrParticipantNotFound
	}

	d.Participants = append(d.Participants[:idx], d.Participants[idx+1:]...)
	for i := range d.Participants {
		d.Participants[i].DraftPosition = i + 1
	}

	e.emit(ctx, events.New(events.TypeParticipantLeft, d.ID, events.ParticipantLeftPayload{
		DraftID: d.ID.String(),
		UserID:  userID,
		LeftAt:  e.clock.Now().UTC(),
	}))

	log.Info().Str("draft_id", d.ID.String()).Str("user_id", userID).Msg("participant left")
	return nil
}

// SetParticipantReady toggles a seat's readiness. Once every seat is ready
// and at least two are present, the draft starts.
func (e *Engine) SetParticipantReady(ctx context.Context, draftID uuid.UUID, userID string, isReady bool) error {
	s, ok := e.session(draftID)
	if !ok {
		return ErrDraftNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft

	if d.Status != models.DraftStatusScheduled && d.Status != models.DraftStatusWaitingForPlayers {
		return fmt.Errorf("%w: readiness can only change before the draft starts", ErrInvalidState)
	}

	p := d.ParticipantByUser(userID)
	if p == nil {
		return ErrParticipantNotFound
	}
	p.IsReady = isReady

	allReady := len(d.Participants) >= 2
	for i := range d.Participants {
		if !d.Participants[i].IsReady {
			allReady = false
			break
		}
	}

	e.emit(ctx, events.New(events.TypeParticipantReadyChanged, d.ID, events.ParticipantReadyChangedPayload{
		DraftID:  d.ID.String(),
		UserID:   userID,
		IsReady:  isReady,
		AllReady: allReady,
	}))

	if allReady {
		e.startLocked(ctx, s)
	}
	return nil
}

// SetAutoPick flips a seat's always-auto-pick preference. Enabling it while
// that seat is on the clock drafts for them immediately.
func (e *Engine) SetAutoPick(ctx context.Context, draftID uuid.UUID, userID string, enabled bool) error {
	s, ok := e.session(draftID)
	if !ok {
		return ErrDraftNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft

	if d.Status.Terminal() {
		return fmt.Errorf("%w: draft is %s", ErrInvalidState, d.Status)
	}

	p := d.ParticipantByUser(userID)
	if p == nil {
		return ErrParticipantNotFound
	}
	p.IsAutoPick = enabled

	if enabled && d.Status == models.DraftStatusInProgress && d.CurrentPickerID == userID {
		e.runTurnLocked(ctx, s)
	}
	return nil
}
