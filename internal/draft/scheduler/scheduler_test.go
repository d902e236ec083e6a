package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firing struct {
	draftID uuid.UUID
	gen     uint64
}

type recorder struct {
	mu    sync.Mutex
	fired []firing
	ch    chan firing
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan firing, 16)}
}

func (r *recorder) onFire(draftID uuid.UUID, gen uint64) {
	r.mu.Lock()
	r.fired = append(r.fired, firing{draftID: draftID, gen: gen})
	r.mu.Unlock()
	r.ch <- firing{draftID: draftID, gen: gen}
}

func (r *recorder) wait(t *testing.T) firing {
	t.Helper()
	select {
	case f := <-r.ch:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for timer to fire")
		return firing{}
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fired)
}

func TestScheduler_FiresAfterDuration(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := newRecorder()
	s := New(clock, rec.onFire)

	draftID := uuid.New()
	s.Arm(draftID, 7, 30*time.Second)

	clock.Advance(29 * time.Second)
	assert.Equal(t, 0, rec.count())

	clock.Advance(time.Second)
	f := rec.wait(t)
	assert.Equal(t, draftID, f.draftID)
	assert.Equal(t, uint64(7), f.gen)
}

func TestScheduler_RearmReplacesTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := newRecorder()
	s := New(clock, rec.onFire)

	draftID := uuid.New()
	s.Arm(draftID, 1, 30*time.Second)
	clock.Advance(20 * time.Second)
	s.Arm(draftID, 2, 30*time.Second)

	// The first timer's deadline passes; only the replacement may fire.
	clock.Advance(15 * time.Second)
	assert.Equal(t, 0, rec.count())

	clock.Advance(15 * time.Second)
	f := rec.wait(t)
	assert.Equal(t, uint64(2), f.gen)
	assert.Equal(t, 1, rec.count())
}

func TestScheduler_CancelStopsTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := newRecorder()
	s := New(clock, rec.onFire)

	draftID := uuid.New()
	s.Arm(draftID, 1, 10*time.Second)
	s.Cancel(draftID)

	clock.Advance(time.Minute)
	assert.Equal(t, 0, rec.count())
}

func TestScheduler_CancelIsIdempotent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(clock, func(uuid.UUID, uint64) {})

	draftID := uuid.New()
	s.Cancel(draftID)
	s.Arm(draftID, 1, 10*time.Second)
	s.Cancel(draftID)
	s.Cancel(draftID)
}

func TestScheduler_IndependentDrafts(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := newRecorder()
	s := New(clock, rec.onFire)

	a, b := uuid.New(), uuid.New()
	s.Arm(a, 1, 10*time.Second)
	s.Arm(b, 1, 20*time.Second)
	s.Cancel(a)

	clock.Advance(30 * time.Second)
	f := rec.wait(t)
	require.Equal(t, b, f.draftID)
	assert.Equal(t, 1, rec.count())
}
