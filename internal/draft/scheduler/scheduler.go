// Package scheduler owns the per-draft pick countdown. At most one timer is
// outstanding per draft at any instant: Arm replaces any previous timer for
// the same draft, and every callback carries the state generation it was
// armed with so the engine can drop stale fires.
package scheduler

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// ExpiryFunc is invoked when a draft's pick timer runs out. gen is the value
// passed to Arm; callers compare it against their current state generation.
type ExpiryFunc func(draftID uuid.UUID, gen uint64)

type entry struct {
	timer clockwork.Timer
	gen   uint64
}

// Scheduler keeps one cancellable countdown per active draft.
type Scheduler struct {
	clock  clockwork.Clock
	onFire ExpiryFunc

	mu     sync.Mutex
	timers map[uuid.UUID]entry
}

// New builds a scheduler. In production pass clockwork.NewRealClock(); tests
// use a FakeClock and advance it to trigger expiries deterministically.
func New(clock clockwork.Clock, onFire ExpiryFunc) *Scheduler {
	return &Scheduler{
		clock:  clock,
		onFire: onFire,
		timers: make(map[uuid.UUID]entry),
	}
}

// Arm starts (or restarts) the countdown for a draft. Any previous timer for
// the same draft is stopped first, so re-arming is always sequenced after
// the prior timer's cancellation.
func (s *Scheduler) Arm(draftID uuid.UUID, gen uint64, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.timers[draftID]; ok {
		prev.timer.Stop()
	}

	t := s.clock.AfterFunc(d, func() {
		s.fired(draftID, gen)
	})
	s.timers[draftID] = entry{timer: t, gen: gen}

	log.Debug().
		Str("draft_id", draftID.String()).
		Uint64("gen", gen).
		Dur("duration", d).
		Msg("pick timer armed")
}

// Cancel stops and discards the pending timer for a draft. Idempotent when
// none exists.
func (s *Scheduler) Cancel(draftID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.timers[draftID]; ok {
		prev.timer.Stop()
		delete(s.timers, draftID)
	}
}

func (s *Scheduler) fired(draftID uuid.UUID, gen uint64) {
	s.mu.Lock()
	cur, ok := s.timers[draftID]
	if !ok || cur.gen != gen {
		// Cancelled or replaced between firing and running; drop it.
		s.mu.Unlock()
		return
	}
	delete(s.timers, draftID)
	s.mu.Unlock()

	s.onFire(draftID, gen)
}
