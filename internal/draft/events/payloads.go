package events

import (
	"time"

	"github.com/draftarena/engine/internal/models"
)

// Payload structs carried in Event.Data, keyed by Type.

type DraftCreatedPayload struct {
	DraftID   string               `json:"draft_id"`
	Sport     string               `json:"sport"`
	DraftType models.DraftType     `json:"draft_type"`
	Settings  models.DraftSettings `json:"settings"`
	CreatedAt time.Time            `json:"created_at"`
	PoolSize  int                  `json:"pool_size"`
}

type ParticipantJoinedPayload struct {
	DraftID       string    `json:"draft_id"`
	UserID        string    `json:"user_id"`
	TeamName      string    `json:"team_name,omitempty"`
	DraftPosition int       `json:"draft_position"`
	JoinedAt      time.Time `json:"joined_at"`
}

type ParticipantLeftPayload struct {
	DraftID string    `json:"draft_id"`
	UserID  string    `json:"user_id"`
	LeftAt  time.Time `json:"left_at"`
}

type ParticipantReadyChangedPayload struct {
	DraftID  string `json:"draft_id"`
	UserID   string `json:"user_id"`
	IsReady  bool   `json:"is_ready"`
	AllReady bool   `json:"all_ready"`
}

type DraftStartedPayload struct {
	DraftID     string    `json:"draft_id"`
	StartedAt   time.Time `json:"started_at"`
	TotalRounds int       `json:"total_rounds"`
	TotalPicks  int       `json:"total_picks"`
	FirstPicker string    `json:"first_picker"`
}

type PickStartedPayload struct {
	DraftID        string    `json:"draft_id"`
	UserID         string    `json:"user_id"`
	Round          int       `json:"round"`
	Pick           int       `json:"pick"`
	PickInRound    int       `json:"pick_in_round"`
	StartedAt      time.Time `json:"started_at"`
	TimeoutAt      time.Time `json:"timeout_at"`
	TimePerPickSec int       `json:"time_per_pick_sec"`
}

type PickMadePayload struct {
	DraftID      string    `json:"draft_id"`
	PickID       string    `json:"pick_id"`
	UserID       string    `json:"user_id"`
	TeamName     string    `json:"team_name,omitempty"`
	PlayerID     string    `json:"player_id"`
	PlayerName   string    `json:"player_name"`
	Position     string    `json:"position"`
	Round        int       `json:"round"`
	Pick         int       `json:"pick"`
	PickInRound  int       `json:"pick_in_round"`
	AuctionPrice *float64  `json:"auction_price,omitempty"`
	IsAutoPick   bool      `json:"is_auto_pick"`
	MadeAt       time.Time `json:"made_at"`
}

type DraftPausedPayload struct {
	DraftID  string    `json:"draft_id"`
	PausedAt time.Time `json:"paused_at"`
	Reason   string    `json:"reason,omitempty"`
}

type DraftResumedPayload struct {
	DraftID   string    `json:"draft_id"`
	ResumedAt time.Time `json:"resumed_at"`
}

type DraftCompletedPayload struct {
	DraftID     string    `json:"draft_id"`
	CompletedAt time.Time `json:"completed_at"`
	Duration    string    `json:"duration"`
	TotalPicks  int       `json:"total_picks"`
}

type DraftCancelledPayload struct {
	DraftID     string    `json:"draft_id"`
	CancelledAt time.Time `json:"cancelled_at"`
	PicksMade   int       `json:"picks_made"`
}

type MockDraftCompletedPayload struct {
	ResultID  string `json:"result_id"`
	UserID    string `json:"user_id"`
	Sport     string `json:"sport"`
	TeamCount int    `json:"team_count"`
	Rounds    int    `json:"rounds"`
	Grade     string `json:"grade"`
}
