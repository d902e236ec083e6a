package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftPick is the immutable record of one completed selection. Created only
// by the draft engine's pick executor; never mutated or deleted.
type DraftPick struct {
	ID            uuid.UUID `json:"id"`
	DraftID       uuid.UUID `json:"draft_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	UserID        string    `json:"user_id"`
	PlayerID      string    `json:"player_id"`
	PlayerName    string    `json:"player_name"`
	Position      string    `json:"position"`
	Team          string    `json:"team"`
	Round         int       `json:"round"`
	Pick          int       `json:"pick"` // pick number overall
	PickInRound   int       `json:"pick_in_round"`
	AuctionPrice  *float64  `json:"auction_price,omitempty"`
	IsAutoPick    bool      `json:"is_auto_pick"`
	PickTime      time.Time `json:"pick_time"`
}
