package draft

import "errors"

// Engine error kinds. All are deterministic validation failures surfaced
// synchronously to the caller; nothing here is retried internally. Callers
// match with errors.Is.
var (
	ErrDraftNotFound       = errors.New("draft not found")
	ErrDraftFull           = errors.New("draft is full")
	ErrAlreadyJoined       = errors.New("user already joined this draft")
	ErrDraftAlreadyStarted = errors.New("draft has already started")
	ErrDraftInProgress     = errors.New("draft is in progress")
	ErrDraftNotInProgress  = errors.New("draft is not in progress")
	ErrDraftCancelled      = errors.New("draft is cancelled")
	ErrNotReady            = errors.New("draft is not ready to start")
	ErrNotYourTurn         = errors.New("not your turn to pick")
	ErrPlayerUnavailable   = errors.New("player is not available")
	ErrBudgetExceeded      = errors.New("auction budget exceeded")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrInvalidState        = errors.New("operation not allowed in current draft state")
)
