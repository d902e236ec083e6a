// Package autopick selects fallback players for seats that run out the
// clock or opted into automatic drafting.
package autopick

import (
	"errors"

	"github.com/draftarena/engine/internal/models"
)

// ErrNoPlayersAvailable is returned when the pool is exhausted before the
// draft's pick budget is reached.
var ErrNoPlayersAvailable = errors.New("no players available")

// Select returns the available player with the lowest ADP. Ties go to the
// first player encountered in pool order, so the result is deterministic
// for a given snapshot.
func Select(pool []models.DraftPlayer) (models.DraftPlayer, error) {
	if len(pool) == 0 {
		return models.DraftPlayer{}, ErrNoPlayersAvailable
	}
	best := pool[0]
	for _, p := range pool[1:] {
		if p.ADP < best.ADP {
			best = p
		}
	}
	return best, nil
}

// TopByADP returns up to n players with the lowest ADP, best first. Stable
// with respect to pool order for equal ADP values. Used by the mock-draft
// simulator to model imperfect opponents picking from the top of the board.
func TopByADP(pool []models.DraftPlayer, n int) []models.DraftPlayer {
	if n > len(pool) {
		n = len(pool)
	}
	top := make([]models.DraftPlayer, 0, n)
	for _, p := range pool {
		inserted := false
		for i := range top {
			if p.ADP < top[i].ADP {
				top = append(top[:i], append([]models.DraftPlayer{p}, top[i:]...)...)
				inserted = true
				break
			}
		}
		if !inserted && len(top) < n {
			top = append(top, p)
			inserted = true
		}
		if len(top) > n {
			top = top[:n]
		}
	}
	return top
}
