// Package store is the optional durability hook invoked after engine state
// transitions. The engine is fully correct in pure memory; a Store only
// archives what already happened.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/draftarena/engine/internal/models"
)

// Store durably records draft lifecycle transitions. Implementations are
// called after the in-memory mutation has committed; a failure is logged by
// the caller, never rolled back.
type Store interface {
	DraftCreated(ctx context.Context, draft *models.Draft) error
	PickMade(ctx context.Context, draftID uuid.UUID, pick *models.DraftPick) error
	DraftCompleted(ctx context.Context, draft *models.Draft) error
}

// Noop satisfies Store without persisting anything.
type Noop struct{}

func (Noop) DraftCreated(context.Context, *models.Draft) error            { return nil }
func (Noop) PickMade(context.Context, uuid.UUID, *models.DraftPick) error { return nil }
func (Noop) DraftCompleted(context.Context, *models.Draft) error          { return nil }
