package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/draftarena/engine/internal/models"
)

// Postgres archives drafts and picks. Settings ride along as JSONB so the
// schema survives settings additions without migrations.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

var _ Store = (*Postgres)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS drafts (
	id           UUID PRIMARY KEY,
	creator_id   TEXT NOT NULL,
	status       TEXT NOT NULL,
	settings     JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS draft_picks (
	id            UUID PRIMARY KEY,
	draft_id      UUID NOT NULL REFERENCES drafts(id),
	participant_id UUID NOT NULL,
	user_id       TEXT NOT NULL,
	player_id     TEXT NOT NULL,
	player_name   TEXT NOT NULL,
	position      TEXT NOT NULL,
	team          TEXT NOT NULL,
	round         INT NOT NULL,
	overall_pick  INT NOT NULL,
	pick_in_round INT NOT NULL,
	auction_price DOUBLE PRECISION,
	is_auto_pick  BOOLEAN NOT NULL,
	pick_time     TIMESTAMPTZ NOT NULL,
	UNIQUE (draft_id, overall_pick)
);
`

// EnsureSchema creates the archival tables if they do not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure draft schema: %w", err)
	}
	return nil
}

func (p *Postgres) DraftCreated(ctx context.Context, draft *models.Draft) error {
	settings, err := json.Marshal(draft.Settings)
	if err != nil {
		return fmt.Errorf("marshal draft settings: %w", err)
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO drafts (id, creator_id, status, settings, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		draft.ID, draft.CreatorUserID, string(draft.Status), settings, draft.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert draft: %w", err)
	}
	return nil
}

func (p *Postgres) PickMade(ctx context.Context, draftID uuid.UUID, pick *models.DraftPick) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO draft_picks
			(id, draft_id, participant_id, user_id, player_id, player_name,
			 position, team, round, overall_pick, pick_in_round,
			 auction_price, is_auto_pick, pick_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (draft_id, overall_pick) DO NOTHING`,
		pick.ID, draftID, pick.ParticipantID, pick.UserID, pick.PlayerID, pick.PlayerName,
		pick.Position, pick.Team, pick.Round, pick.Pick, pick.PickInRound,
		pick.AuctionPrice, pick.IsAutoPick, pick.PickTime,
	)
	if err != nil {
		return fmt.Errorf("insert draft pick: %w", err)
	}
	return nil
}

func (p *Postgres) DraftCompleted(ctx context.Context, draft *models.Draft) error {
	completedAt := time.Now().UTC()
	if draft.CompletedAt != nil {
		completedAt = *draft.CompletedAt
	}

	_, err := p.pool.Exec(ctx,
		`UPDATE drafts SET status = $2, completed_at = $3 WHERE id = $1`,
		draft.ID, string(draft.Status), completedAt,
	)
	if err != nil {
		return fmt.Errorf("update completed draft: %w", err)
	}
	return nil
}
