package models

import (
	"time"

	"github.com/google/uuid"
)

// MockDraftSettings are the inputs for one simulated draft.
type MockDraftSettings struct {
	Sport        string     `json:"sport"`
	DraftType    DraftType  `json:"draft_type"`
	DraftOrder   DraftOrder `json:"draft_order"`
	TeamCount    int        `json:"team_count"`
	Rounds       int        `json:"rounds"`
	UserPosition int        `json:"user_position"` // 1-based seat of the user
}

// TeamAnalysis grades the user's simulated roster.
type TeamAnalysis struct {
	Grade      string   `json:"grade"` // A..F
	Score      int      `json:"score"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

// MockDraftResult is the immutable output of one simulator run, owned by the
// requesting user.
type MockDraftResult struct {
	ID        uuid.UUID         `json:"id"`
	UserID    string            `json:"user_id"`
	Settings  MockDraftSettings `json:"settings"`
	Results   []DraftPick       `json:"results"`
	UserTeam  []DraftPick       `json:"user_team"`
	Analysis  TeamAnalysis      `json:"ai_analysis"`
	CreatedAt time.Time         `json:"created_at"`
}
