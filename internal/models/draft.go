package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftOrder defines how the acting seat rotates between rounds.
type DraftOrder string

const (
	DraftOrderStandard           DraftOrder = "STANDARD"
	DraftOrderSnake              DraftOrder = "SNAKE"
	DraftOrderLinear             DraftOrder = "LINEAR"
	DraftOrderThirdRoundReversal DraftOrder = "THIRD_ROUND_REVERSAL"
)

// DraftType defines the scoring/format variant. It never affects turn order.
type DraftType string

const (
	DraftTypeStandard DraftType = "STANDARD"
	DraftTypePPR      DraftType = "PPR"
	DraftTypeDynasty  DraftType = "DYNASTY"
	DraftTypeKeeper   DraftType = "KEEPER"
)

// DraftStatus defines the lifecycle state of a draft.
type DraftStatus string

const (
	DraftStatusScheduled         DraftStatus = "SCHEDULED"
	DraftStatusWaitingForPlayers DraftStatus = "WAITING_FOR_PLAYERS"
	DraftStatusInProgress        DraftStatus = "IN_PROGRESS"
	DraftStatusPaused            DraftStatus = "PAUSED"
	DraftStatusCompleted         DraftStatus = "COMPLETED"
	DraftStatusCancelled         DraftStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are possible.
func (s DraftStatus) Terminal() bool {
	return s == DraftStatusCompleted || s == DraftStatusCancelled
}

// DraftSettings holds per-draft configuration fixed at creation time.
type DraftSettings struct {
	Sport           string     `json:"sport"`
	DraftType       DraftType  `json:"draft_type"`
	DraftOrder      DraftOrder `json:"draft_order"`
	TotalRounds     int        `json:"total_rounds"`
	TimePerPickSec  int        `json:"time_per_pick_sec"`
	MaxParticipants int        `json:"max_participants"`
	IsAuction       bool       `json:"is_auction"`
	AuctionBudget   float64    `json:"auction_budget,omitempty"`
}

// Draft is the session aggregate: all mutable state for one running draft.
// All mutation is serialized per draft by the engine; readers receive
// snapshots, never the live aggregate.
type Draft struct {
	ID               uuid.UUID          `json:"id"`
	CreatorUserID    string             `json:"creator_user_id"`
	Settings         DraftSettings      `json:"settings"`
	Status           DraftStatus        `json:"status"`
	CurrentRound     int                `json:"current_round"`
	CurrentPick      int                `json:"current_pick"` // global, 1-based
	CurrentPickerID  string             `json:"current_picker_id,omitempty"`
	Participants     []DraftParticipant `json:"participants"`
	Picks            []DraftPick        `json:"picks"`
	AvailablePlayers []DraftPlayer      `json:"available_players"`
	CreatedAt        time.Time          `json:"created_at"`
	StartedAt        *time.Time         `json:"started_at,omitempty"`
	CompletedAt      *time.Time         `json:"completed_at,omitempty"`
}

// TotalPicks is the pick budget for the whole draft.
func (d *Draft) TotalPicks() int {
	return len(d.Participants) * d.Settings.TotalRounds
}

// ParticipantByUser returns the seat owned by userID, or nil.
func (d *Draft) ParticipantByUser(userID string) *DraftParticipant {
	for i := range d.Participants {
		if d.Participants[i].UserID == userID {
			return &d.Participants[i]
		}
	}
	return nil
}

// ParticipantBySeat returns the participant at 1-based draft position, or nil.
func (d *Draft) ParticipantBySeat(seat int) *DraftParticipant {
	for i := range d.Participants {
		if d.Participants[i].DraftPosition == seat {
			return &d.Participants[i]
		}
	}
	return nil
}

// RemainingBudget is the auction budget the participant has left.
func (d *Draft) RemainingBudget(p *DraftParticipant) float64 {
	if !d.Settings.IsAuction || p == nil {
		return 0
	}
	return d.Settings.AuctionBudget - p.TotalSpent
}
