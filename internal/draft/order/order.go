// Package order computes which seat is on the clock for a given pick.
// Everything here is pure: the engine caches results on the aggregate but
// never derives them any other way.
package order

import "github.com/draftarena/engine/internal/models"

// PickInRound converts a 1-based global pick number into its 1-based
// position within the round.
func PickInRound(currentPick, participants int) int {
	return (currentPick-1)%participants + 1
}

// RoundOf converts a 1-based global pick number into its 1-based round.
func RoundOf(currentPick, participants int) int {
	return (currentPick-1)/participants + 1
}

// Seat returns the 1-based draft position that acts on the given pick.
//
// STANDARD and LINEAR never reverse. SNAKE reverses even rounds.
// THIRD_ROUND_REVERSAL runs round 1 forward and every round from 2 onward
// in the reversed-round pattern used by snake, with rounds 3+ all reversed;
// this matches the platform convention the rest of the product follows.
func Seat(policy models.DraftOrder, currentRound, currentPick, participants int) int {
	pir := PickInRound(currentPick, participants)
	if reversed(policy, currentRound) {
		return participants - pir + 1
	}
	return pir
}

func reversed(policy models.DraftOrder, round int) bool {
	switch policy {
	case models.DraftOrderSnake:
		return round%2 == 0
	case models.DraftOrderThirdRoundReversal:
		return round%2 == 0 || round >= 3
	default: // STANDARD, LINEAR
		return false
	}
}
