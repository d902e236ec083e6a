// Package mockdraft runs single-user practice drafts against synthetic
// opponents and grades the resulting roster. A simulation is synchronous,
// touches no shared draft state, and never arms timers.
package mockdraft

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/draftarena/engine/internal/draft/autopick"
	"github.com/draftarena/engine/internal/draft/events"
	"github.com/draftarena/engine/internal/draft/order"
	"github.com/draftarena/engine/internal/metrics"
	"github.com/draftarena/engine/internal/models"
	"github.com/draftarena/engine/internal/pool"
)

// Opponents pick at random among this many top-of-board players, modelling
// imperfect AI drafters.
const opponentBoardDepth = 5

// How many results are retained per user; oldest fall off first.
const resultsPerUser = 20

// Request are the inputs for one simulation.
type Request struct {
	UserID       string            `json:"user_id" validate:"required"`
	Sport        string            `json:"sport" validate:"required"`
	DraftType    models.DraftType  `json:"draft_type"`
	DraftOrder   models.DraftOrder `json:"draft_order" validate:"omitempty,oneof=STANDARD SNAKE LINEAR THIRD_ROUND_REVERSAL"`
	TeamCount    int               `json:"team_count" validate:"gte=2"`
	Rounds       int               `json:"rounds" validate:"gte=1"`
	UserPosition int               `json:"user_position" validate:"gte=1"`
}

// Simulator owns a seedable random source and a bounded per-user result
// cache. Safe for concurrent use; runs are serialized around the shared
// random source.
type Simulator struct {
	pool     pool.Provider
	sink     events.Sink
	validate *validator.Validate
	results  *lru.Cache[string, []*models.MockDraftResult]

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a simulator around the given random source. Tests pass a fixed
// seed to make runs reproducible.
func New(provider pool.Provider, sink events.Sink, src rand.Source) (*Simulator, error) {
	if sink == nil {
		sink = events.LogSink{}
	}
	cache, err := lru.New[string, []*models.MockDraftResult](1024)
	if err != nil {
		return nil, fmt.Errorf("create mock draft result cache: %w", err)
	}
	return &Simulator{
		pool:     provider,
		sink:     sink,
		rng:      rand.New(src),
		validate: validator.New(),
		results:  cache,
	}, nil
}

// Run simulates a full draft and returns the graded result.
func (s *Simulator) Run(ctx context.Context, req Request) (*models.MockDraftResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid mock draft request: %w", err)
	}
	if req.UserPosition > req.TeamCount {
		return nil, fmt.Errorf("invalid mock draft request: user position %d exceeds team count %d", req.UserPosition, req.TeamCount)
	}
	if req.DraftOrder == "" {
		req.DraftOrder = models.DraftOrderSnake
	}
	if req.DraftType == "" {
		req.DraftType = models.DraftTypeStandard
	}

	available, err := s.pool.GetPool(ctx, req.Sport)
	if err != nil {
		return nil, fmt.Errorf("load player pool: %w", err)
	}
	totalPicks := req.TeamCount * req.Rounds
	if len(available) < totalPicks {
		return nil, fmt.Errorf("pool of %d players cannot cover %d picks", len(available), totalPicks)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draftID := uuid.New()
	results := make([]models.DraftPick, 0, totalPicks)
	userTeam := make([]models.DraftPick, 0, req.Rounds)

	for pickNo := 1; pickNo <= totalPicks; pickNo++ {
		round := order.RoundOf(pickNo, req.TeamCount)
		seat := order.Seat(req.DraftOrder, round, pickNo, req.TeamCount)

		var chosen models.DraftPlayer
		if seat == req.UserPosition {
			chosen, err = autopick.Select(available)
			if err != nil {
				return nil, fmt.Errorf("pick %d: %w", pickNo, err)
			}
		} else {
			board := autopick.TopByADP(available, opponentBoardDepth)
			chosen = board[s.rng.Intn(len(board))]
		}

		removePlayer(&available, chosen.ID)
		pick := models.DraftPick{
			ID:          uuid.New(),
			DraftID:     draftID,
			UserID:      fmt.Sprintf("ai-seat-%d", seat),
			PlayerID:    chosen.ID,
			PlayerName:  chosen.Name,
			Position:    chosen.Position,
			Team:        chosen.Team,
			Round:       round,
			Pick:        pickNo,
			PickInRound: order.PickInRound(pickNo, req.TeamCount),
			IsAutoPick:  seat != req.UserPosition,
		}
		if seat == req.UserPosition {
			pick.UserID = req.UserID
			userTeam = append(userTeam, pick)
		}
		results = append(results, pick)
	}

	result := &models.MockDraftResult{
		ID:     draftID,
		UserID: req.UserID,
		Settings: models.MockDraftSettings{
			Sport:        req.Sport,
			DraftType:    req.DraftType,
			DraftOrder:   req.DraftOrder,
			TeamCount:    req.TeamCount,
			Rounds:       req.Rounds,
			UserPosition: req.UserPosition,
		},
		Results:   results,
		UserTeam:  userTeam,
		Analysis:  Grade(userTeam),
		CreatedAt: time.Now().UTC(),
	}

	s.remember(result)
	metrics.MockDrafts.Inc()
	s.sink.Publish(ctx, events.New(events.TypeMockDraftCompleted, draftID, events.MockDraftCompletedPayload{
		ResultID:  result.ID.String(),
		UserID:    req.UserID,
		Sport:     req.Sport,
		TeamCount: req.TeamCount,
		Rounds:    req.Rounds,
		Grade:     result.Analysis.Grade,
	}))

	log.Info().
		Str("user_id", req.UserID).
		Str("sport", req.Sport).
		Int("rounds", req.Rounds).
		Str("grade", result.Analysis.Grade).
		Msg("mock draft completed")

	return result, nil
}

// UserResults returns the user's retained results, most recent first.
func (s *Simulator) UserResults(userID string) []*models.MockDraftResult {
	stored, ok := s.results.Get(userID)
	if !ok {
		return nil
	}
	out := make([]*models.MockDraftResult, len(stored))
	for i, r := range stored {
		out[len(stored)-1-i] = r
	}
	return out
}

func (s *Simulator) remember(result *models.MockDraftResult) {
	stored, _ := s.results.Get(result.UserID)
	stored = append(stored, result)
	if len(stored) > resultsPerUser {
		stored = stored[len(stored)-resultsPerUser:]
	}
	s.results.Add(result.UserID, stored)
}

func removePlayer(pool *[]models.DraftPlayer, id string) {
	players := *pool
	for i := range players {
		if players[i].ID == id {
			*pool = append(players[:i], players[i+1:]...)
			return
		}
	}
}
