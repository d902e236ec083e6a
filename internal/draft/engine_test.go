package draft

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftarena/engine/internal/draft/events"
	"github.com/draftarena/engine/internal/models"
	"github.com/draftarena/engine/internal/pool"
)

// captureSink records every published event for assertions. Safe for the
// concurrent publishes that timer expiries produce.
type captureSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *captureSink) Publish(_ context.Context, event events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureSink) types() []events.Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.Type, len(c.events))
	for i, e := range c.events {
		out[i] = e.Type
	}
	return out
}

func (c *captureSink) count(eventType events.Type) int {
	n := 0
	for _, t := range c.types() {
		if t == eventType {
			n++
		}
	}
	return n
}

func testPlayers(n int) []models.DraftPlayer {
	positions := []string{"QB", "RB", "WR", "TE"}
	players := make([]models.DraftPlayer, 0, n)
	for i := 1; i <= n; i++ {
		players = append(players, models.DraftPlayer{
			ID:       fmt.Sprintf("player-%02d", i),
			Name:     fmt.Sprintf("Player %d", i),
			Position: positions[i%len(positions)],
			Team:     "FA",
			ADP:      float64(i),
		})
	}
	return players
}

func newTestEngine(t *testing.T) (*Engine, *captureSink, clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	sink := &captureSink{}
	e := New(Config{
		Pool:  pool.NewStatic(map[string][]models.DraftPlayer{"NFL": testPlayers(60)}),
		Sink:  sink,
		Clock: clock,
	})
	return e, sink, clock
}

func createTestDraft(t *testing.T, e *Engine, mutate func(*CreateDraftRequest)) *models.Draft {
	t.Helper()
	req := CreateDraftRequest{
		CreatorUserID:   "u1",
		Sport:           "NFL",
		DraftType:       models.DraftTypeStandard,
		DraftOrder:      models.DraftOrderSnake,
		TotalRounds:     3,
		TimePerPickSec:  60,
		MaxParticipants: 4,
	}
	if mutate != nil {
		mutate(&req)
	}
	d, err := e.CreateDraft(context.Background(), req)
	require.NoError(t, err)
	return d
}

func joinAll(t *testing.T, e *Engine, d *models.Draft, users ...string) {
	t.Helper()
	for _, u := range users {
		_, err := e.JoinDraft(context.Background(), d.ID, u, "Team "+u)
		require.NoError(t, err)
	}
}

func mustGet(t *testing.T, e *Engine, d *models.Draft) *models.Draft {
	t.Helper()
	out, err := e.GetDraft(context.Background(), d.ID)
	require.NoError(t, err)
	return out
}

func TestSnakeDraftLifecycle(t *testing.T) {
	e, sink, _ := newTestEngine(t)
	ctx := context.Background()

	d := createTestDraft(t, e, nil)
	assert.Equal(t, models.DraftStatusScheduled, d.Status)

	joinAll(t, e, d, "u1", "u2", "u3", "u4")
	assert.Equal(t, models.DraftStatusWaitingForPlayers, mustGet(t, e, d).Status)

	for _, u := range []string{"u1", "u2", "u3", "u4"} {
		require.NoError(t, e.SetParticipantReady(ctx, d.ID, u, true))
	}

	cur := mustGet(t, e, d)
	require.Equal(t, models.DraftStatusInProgress, cur.Status)
	require.NotNil(t, cur.StartedAt)

	// Snake over 4 seats and 3 rounds.
	wantOrder := []string{
		"u1", "u2", "u3", "u4",
		"u4", "u3", "u2", "u1",
		"u1", "u2", "u3", "u4",
	}
	for i, want := range wantOrder {
		cur = mustGet(t, e, d)
		require.Equal(t, want, cur.CurrentPickerID, "pick %d", i+1)
		require.Equal(t, i+1, cur.CurrentPick)

		pick, err := e.MakePick(ctx, MakePickRequest{
			DraftID:  d.ID,
			UserID:   want,
			PlayerID: cur.AvailablePlayers[0].ID,
		})
		require.NoError(t, err)
		assert.Equal(t, want, pick.UserID)
		assert.False(t, pick.IsAutoPick)
	}

	final := mustGet(t, e, d)
	assert.Equal(t, models.DraftStatusCompleted, final.Status)
	require.NotNil(t, final.CompletedAt)
	require.Len(t, final.Picks, 12)
	assert.Empty(t, final.CurrentPickerID)

	seen := make(map[string]bool)
	for _, p := range final.Picks {
		assert.False(t, seen[p.PlayerID], "player %s drafted twice", p.PlayerID)
		seen[p.PlayerID] = true
	}

	assert.Equal(t, 1, sink.count(events.TypeDraftStarted))
	assert.Equal(t, 1, sink.count(events.TypeDraftCompleted))
	assert.Equal(t, 12, sink.count(events.TypePickMade))
}

func TestTimeoutAutoPicksLowestADP(t *testing.T) {
	e, sink, clock := newTestEngine(t)
	ctx := context.Background()

	d := createTestDraft(t, e, func(r *CreateDraftRequest) {
		r.MaxParticipants = 2
		r.TotalRounds = 2
		r.TimePerPickSec = 30
	})
	joinAll(t, e, d, "u1", "u2")
	require.NoError(t, e.StartDraft(ctx, d.ID))

	clock.Advance(30 * time.Second)

	require.Eventually(t, func() bool {
		return len(mustGet(t, e, d).Picks) == 1
	}, 2*time.Second, 10*time.Millisecond, "timer expiry should auto-pick")

	cur := mustGet(t, e, d)
	pick := cur.Picks[0]
	assert.True(t, pick.IsAutoPick)
	assert.Equal(t, "u1", pick.UserID)
	assert.Equal(t, "player-01", pick.PlayerID, "auto-pick takes the lowest ADP")
	assert.Equal(t, "u2", cur.CurrentPickerID)

	seat := cur.ParticipantByUser("u1")
	require.NotNil(t, seat)
	assert.Equal(t, 2, seat.Timeouts, "running out the clock consumes an allowance")

	assert.Equal(t, 1, sink.count(events.TypeAutoPickMade))
}

func TestTimeoutIgnoredAfterManualPick(t *testing.T) {
	e, _, clock := newTestEngine(t)
	ctx := context.Background()

	d := createTestDraft(t, e, func(r *CreateDraftRequest) {
		r.MaxParticipants = 2
		r.TotalRounds = 2
		r.TimePerPickSec = 30
	})
	joinAll(t, e, d, "u1", "u2")
	require.NoError(t, e.StartDraft(ctx, d.ID))

	clock.Advance(20 * time.Second)
	cur := mustGet(t, e, d)
	_, err := e.MakePick(ctx, MakePickRequest{DraftID: d.ID, UserID: "u1", PlayerID: cur.AvailablePlayers[0].ID})
	require.NoError(t, err)

	// u1's original deadline passes, but a fresh 30s window was armed for u2
	// at pick time; the replaced countdown must not draft for u2.
	clock.Advance(15 * time.Second)
	time.Sleep(50 * time.Millisecond)
	cur = mustGet(t, e, d)
	assert.Len(t, cur.Picks, 1)
	assert.Equal(t, "u2", cur.CurrentPickerID)
}

func TestMakePickRejections(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	d := createTestDraft(t, e, func(r *CreateDraftRequest) {
		r.MaxParticipants = 2
		r.TotalRounds = 2
	})
	joinAll(t, e, d, "u1", "u2")

	t.Run("not in progress", func(t *testing.T) {
		_, err := e.MakePick(ctx, MakePickRequest{DraftID: d.ID, UserID: "u1", PlayerID: "player-01"})
		assert.ErrorIs(t, err, ErrDraftNotInProgress)
	})

	require.NoError(t, e.StartDraft(ctx, d.ID))

	t.Run("not your turn", func(t *testing.T) {
		_, err := e.MakePick(ctx, MakePickRequest{DraftID: d.ID, UserID: "u2", PlayerID: "player-01"})
		assert.ErrorIs(t, err, ErrNotYourTurn)
		cur := mustGet(t, e, d)
		assert.Empty(t, cur.Picks)
		assert.Equal(t, "u1", cur.CurrentPickerID)
	})

	t.Run("player unavailable", func(t *testing.T) {
		_, err := e.MakePick(ctx, MakePickRequest{DraftID: d.ID, UserID: "u1", PlayerID: "nobody"})
		assert.ErrorIs(t, err, ErrPlayerUnavailable)
		assert.Empty(t, mustGet(t, e, d).Picks)
	})

	t.Run("unknown draft", func(t *testing.T) {
		_, err := e.MakePick(ctx, MakePickRequest{DraftID: uuid.New(), UserID: "u1", PlayerID: "player-01"})
		assert.ErrorIs(t, err, ErrDraftNotFound)
	})
}

func TestAuctionBudgetEnforced(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	d := createTestDraft(t, e, func(r *CreateDraftRequest) {
		r.MaxParticipants = 2
		r.TotalRounds = 2
		r.IsAuction = true
		r.AuctionBudget = 100
	})
	joinAll(t, e, d, "u1", "u2")
	require.NoError(t, e.StartDraft(ctx, d.ID))

	bid := func(v float64) *float64 { return &v }

	_, err := e.MakePick(ctx, MakePickRequest{DraftID: d.ID, UserID: "u1", PlayerID: "player-01", AuctionPrice: bid(150)})
	require.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Empty(t, mustGet(t, e, d).Picks, "rejected bid must not mutate state")

	_, err = e.MakePick(ctx, MakePickRequest{DraftID: d.ID, UserID: "u1", PlayerID: "player-01", AuctionPrice: bid(60)})
	require.NoError(t, err)

	cur := mustGet(t, e, d)
	seat := cur.ParticipantByUser("u1")
	assert.Equal(t, 60.0, seat.TotalSpent)
	assert.Equal(t, 40.0, cur.RemainingBudget(seat))

	// Snake round two: u2 picks twice, then u1 again.
	for _, u := range []string{"u2", "u2"} {
		cur = mustGet(t, e, d)
		_, err = e.MakePick(ctx, MakePickRequest{DraftID: d.ID, UserID: u, PlayerID: cur.AvailablePlayers[0].ID, AuctionPrice: bid(10)})
		require.NoError(t, err)
	}

	cur = mustGet(t, e, d)
	_, err = e.MakePick(ctx, MakePickRequest{DraftID: d.ID, UserID: "u1", PlayerID: cur.AvailablePlayers[0].ID, AuctionPrice: bid(50)})
	require.ErrorIs(t, err, ErrBudgetExceeded, "spent 60 of 100, a 50 bid overruns")

	_, err = e.MakePick(ctx, MakePickRequest{DraftID: d.ID, UserID: "u1", PlayerID: cur.AvailablePlayers[0].ID, AuctionPrice: bid(40)})
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusCompleted, mustGet(t, e, d).Status)
}

func TestJoinConstraints(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	d := createTestDraft(t, e, func(r *CreateDraftRequest) {
		r.MaxParticipants = 2
		r.TotalRounds = 2
	})
	joinAll(t, e, d, "u1")

	_, err := e.JoinDraft(ctx, d.ID, "u1", "again")
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	joinAll(t, e, d, "u2")
	_, err = e.JoinDraft(ctx, d.ID, "u3", "late")
	assert.ErrorIs(t, err, ErrDraftFull)

	require.NoError(t, e.StartDraft(ctx, d.ID))
	_, err = e.JoinDraft(ctx, d.ID, "u4", "too late")
	assert.ErrorIs(t, err, ErrDraftAlreadyStarted)
}

func TestLeaveRenumbersSeats(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	d := createTestDraft(t, e, nil)
	joinAll(t, e, d, "u1", "u2", "u3")

	require.NoError(t, e.LeaveDraft(ctx, d.ID, "u2"))

	cur := mustGet(t, e, d)
	require.Len(t, cur.Participants, 2)
	assert.Equal(t, "u1", cur.Participants[0].UserID)
	assert.Equal(t, 1, cur.Participants[0].DraftPosition)
	assert.Equal(t, "u3", cur.Participants[1].UserID)
	assert.Equal(t, 2, cur.Participants[1].DraftPosition)

	assert.ErrorIs(t, e.LeaveDraft(ctx, d.ID, "u2"), ErrParticipantNotFound)

	require.NoError(t, e.StartDraft(ctx, d.ID))
	assert.ErrorIs(t, e.LeaveDraft(ctx, d.ID, "u1"), ErrDraftInProgress)
}

func TestCancelDraft(t *testing.T) {
	e, sink, clock := newTestEngine(t)
	ctx := context.Background()

	d := createTestDraft(t, e, func(r *CreateDraftRequest) {
		r.MaxParticipants = 2
		r.TotalRounds = 2
		r.TimePerPickSec = 30
	})
	joinAll(t, e, d, "u1", "u2")
	require.NoError(t, e.StartDraft(ctx, d.ID))
	require.NoError(t, e.CancelDraft(ctx, d.ID))

	cur := mustGet(t, e, d)
	assert.Equal(t, models.DraftStatusCancelled, cur.Status)

	_, err := e.MakePick(ctx, MakePickRequest{DraftID: d.ID, UserID: "u1", PlayerID: "player-01"})
	assert.ErrorIs(t, err, ErrDraftCancelled)

	// The armed countdown was disarmed; its deadline passing changes nothing.
	clock.Advance(time.Minute)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, mustGet(t, e, d).Picks)

	assert.ErrorIs(t, e.CancelDraft(ctx, d.ID), ErrInvalidState)
	assert.Equal(t, 1, sink.count(events.TypeDraftCancelled))
}

func TestAutoPickSeatIsDraftedImmediately(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	d := createTestDraft(t, e, func(r *CreateDraftRequest) {
		r.MaxParticipants = 3
		r.TotalRounds = 2
	})
	joinAll(t, e, d, "u1", "u2", "u3")
	require.NoError(t, e.SetAutoPick(ctx, d.ID, "u2", true))
	require.NoError(t, e.StartDraft(ctx, d.ID))

	cur := mustGet(t, e, d)
	require.Equal(t, "u1", cur.CurrentPickerID)

	_, err := e.MakePick(ctx, MakePickRequest{DraftID: d.ID, UserID: "u1", PlayerID: cur.AvailablePlayers[5].ID})
	require.NoError(t, err)

	cur = mustGet(t, e, d)
	require.Len(t, cur.Picks, 2, "the auto seat drafts without waiting")
	assert.Equal(t, "u2", cur.Picks[1].UserID)
	assert.True(t, cur.Picks[1].IsAutoPick)
	assert.Equal(t, "u3", cur.CurrentPickerID)
}

func TestSetAutoPickWhileOnTheClock(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	d := createTestDraft(t, e, func(r *CreateDraftRequest) {
		r.MaxParticipants = 2
		r.TotalRounds = 2
	})
	joinAll(t, e, d, "u1", "u2")
	require.NoError(t, e.StartDraft(ctx, d.ID))

	require.NoError(t, e.SetAutoPick(ctx, d.ID, "u1", true))

	cur := mustGet(t, e, d)
	require.Len(t, cur.Picks, 1)
	assert.Equal(t, "u1", cur.Picks[0].UserID)
	assert.True(t, cur.Picks[0].IsAutoPick)
	assert.Equal(t, "u2", cur.CurrentPickerID)
}

func TestPauseResume(t *testing.T) {
	e, _, clock := newTestEngine(t)
	ctx := context.Background()

	d := createTestDraft(t, e, func(r *CreateDraftRequest) {
		r.MaxParticipants = 2
		r.TotalRounds = 2
		r.TimePerPickSec = 30
	})
	joinAll(t, e, d, "u1", "u2")
	require.NoError(t, e.StartDraft(ctx, d.ID))
	require.NoError(t, e.PauseDraft(ctx, d.ID, "commissioner break"))

	_, err := e.MakePick(ctx, MakePickRequest{DraftID: d.ID, UserID: "u1", PlayerID: "player-01"})
	assert.ErrorIs(t, err, ErrDraftNotInProgress)

	// Paused drafts never run the clock out.
	clock.Advance(time.Minute)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, mustGet(t, e, d).Picks)

	require.NoError(t, e.ResumeDraft(ctx, d.ID))
	cur := mustGet(t, e, d)
	assert.Equal(t, models.DraftStatusInProgress, cur.Status)
	assert.Equal(t, "u1", cur.CurrentPickerID)

	_, err = e.MakePick(ctx, MakePickRequest{DraftID: d.ID, UserID: "u1", PlayerID: cur.AvailablePlayers[0].ID})
	require.NoError(t, err)

	assert.ErrorIs(t, e.ResumeDraft(ctx, d.ID), ErrInvalidState)
}

func TestStartRequiresTwoParticipants(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	d := createTestDraft(t, e, nil)
	joinAll(t, e, d, "u1")
	assert.ErrorIs(t, e.StartDraft(ctx, d.ID), ErrNotReady)
}

func TestReadyDoesNotStartWithOneParticipant(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	d := createTestDraft(t, e, nil)
	joinAll(t, e, d, "u1")
	require.NoError(t, e.SetParticipantReady(ctx, d.ID, "u1", true))
	assert.Equal(t, models.DraftStatusWaitingForPlayers, mustGet(t, e, d).Status)
}

func TestRemoveDraftOnlyWhenTerminal(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	d := createTestDraft(t, e, func(r *CreateDraftRequest) {
		r.MaxParticipants = 2
		r.TotalRounds = 2
	})
	joinAll(t, e, d, "u1", "u2")
	require.NoError(t, e.StartDraft(ctx, d.ID))

	assert.ErrorIs(t, e.RemoveDraft(ctx, d.ID), ErrInvalidState)

	require.NoError(t, e.CancelDraft(ctx, d.ID))
	require.NoError(t, e.RemoveDraft(ctx, d.ID))

	_, err := e.GetDraft(ctx, d.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestCreateDraftValidation(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	t.Run("pool must cover pick budget", func(t *testing.T) {
		_, err := e.CreateDraft(ctx, CreateDraftRequest{
			CreatorUserID:   "u1",
			Sport:           "NFL",
			DraftType:       models.DraftTypeStandard,
			DraftOrder:      models.DraftOrderSnake,
			TotalRounds:     20,
			TimePerPickSec:  60,
			MaxParticipants: 12,
		})
		require.Error(t, err)
	})

	t.Run("auction needs positive budget", func(t *testing.T) {
		_, err := e.CreateDraft(ctx, CreateDraftRequest{
			CreatorUserID:   "u1",
			Sport:           "NFL",
			DraftType:       models.DraftTypeStandard,
			DraftOrder:      models.DraftOrderSnake,
			TotalRounds:     3,
			TimePerPickSec:  60,
			MaxParticipants: 4,
			IsAuction:       true,
		})
		require.Error(t, err)
	})

	t.Run("unknown draft order", func(t *testing.T) {
		_, err := e.CreateDraft(ctx, CreateDraftRequest{
			CreatorUserID:   "u1",
			Sport:           "NFL",
			DraftType:       models.DraftTypeStandard,
			DraftOrder:      "SPIRAL",
			TotalRounds:     3,
			TimePerPickSec:  60,
			MaxParticipants: 4,
		})
		require.Error(t, err)
	})

	t.Run("unknown sport", func(t *testing.T) {
		_, err := e.CreateDraft(ctx, CreateDraftRequest{
			CreatorUserID:   "u1",
			Sport:           "CURLING",
			DraftType:       models.DraftTypeStandard,
			DraftOrder:      models.DraftOrderSnake,
			TotalRounds:     3,
			TimePerPickSec:  60,
			MaxParticipants: 4,
		})
		require.Error(t, err)
	})
}

func TestListDraftsFiltersAndOrders(t *testing.T) {
	clock := clockwork.NewFakeClock()
	e := New(Config{
		Pool: pool.NewStatic(map[string][]models.DraftPlayer{
			"NFL": testPlayers(60),
			"NBA": testPlayers(60),
		}),
		Sink:  &captureSink{},
		Clock: clock,
	})
	ctx := context.Background()

	first, err := e.CreateDraft(ctx, CreateDraftRequest{
		CreatorUserID: "u1", Sport: "NFL", DraftType: models.DraftTypeStandard,
		DraftOrder: models.DraftOrderSnake, TotalRounds: 3, TimePerPickSec: 60, MaxParticipants: 4,
	})
	require.NoError(t, err)
	clock.Advance(time.Second)
	second, err := e.CreateDraft(ctx, CreateDraftRequest{
		CreatorUserID: "u2", Sport: "NBA", DraftType: models.DraftTypePPR,
		DraftOrder: models.DraftOrderLinear, TotalRounds: 3, TimePerPickSec: 60, MaxParticipants: 4,
	})
	require.NoError(t, err)

	all := e.ListDrafts(ctx, ListFilter{})
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")
	assert.Equal(t, first.ID, all[1].ID)

	nfl := e.ListDrafts(ctx, ListFilter{Sport: "NFL"})
	require.Len(t, nfl, 1)
	assert.Equal(t, first.ID, nfl[0].ID)

	scheduled := e.ListDrafts(ctx, ListFilter{Status: models.DraftStatusScheduled})
	assert.Len(t, scheduled, 2)
}

func TestSnapshotIsolation(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	d := createTestDraft(t, e, nil)
	joinAll(t, e, d, "u1", "u2")

	snap := mustGet(t, e, d)
	snap.Participants[0].UserID = "tampered"
	snap.AvailablePlayers[0].ID = "tampered"

	fresh, err := e.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", fresh.Participants[0].UserID)
	assert.Equal(t, "player-01", fresh.AvailablePlayers[0].ID)
}
