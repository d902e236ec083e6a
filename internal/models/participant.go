package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftParticipant is one seat in a draft. Created on join, removable only
// before the draft starts, and frozen once the draft is in progress.
type DraftParticipant struct {
	ID            uuid.UUID `json:"id"`
	UserID        string    `json:"user_id"`
	TeamName      string    `json:"team_name,omitempty"`
	DraftPosition int       `json:"draft_position"` // 1..N, dense
	IsReady       bool      `json:"is_ready"`
	IsAutoPick    bool      `json:"is_auto_pick"`
	TotalSpent    float64   `json:"total_spent"` // auction only
	Timeouts      int       `json:"timeouts"`
	JoinedAt      time.Time `json:"joined_at"`
}
