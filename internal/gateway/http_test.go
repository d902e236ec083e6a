package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftarena/engine/internal/draft"
	"github.com/draftarena/engine/internal/mockdraft"
	"github.com/draftarena/engine/internal/models"
	"github.com/draftarena/engine/internal/pool"
)

func testHandler(t *testing.T) http.Handler {
	t.Helper()

	positions := []string{"QB", "RB", "WR", "TE"}
	players := make([]models.DraftPlayer, 0, 60)
	for i := 1; i <= 60; i++ {
		players = append(players, models.DraftPlayer{
			ID:       fmt.Sprintf("player-%02d", i),
			Name:     fmt.Sprintf("Player %d", i),
			Position: positions[i%len(positions)],
			ADP:      float64(i),
		})
	}
	provider := pool.NewStatic(map[string][]models.DraftPlayer{"NFL": players})

	engine := draft.New(draft.Config{Pool: provider, Clock: clockwork.NewFakeClock()})
	sim, err := mockdraft.New(provider, nil, rand.NewSource(1))
	require.NoError(t, err)

	return NewHandler(engine, sim, nil).Routes()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestHealthz(t *testing.T) {
	h := testHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDraftLifecycleOverHTTP(t *testing.T) {
	h := testHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/drafts", map[string]any{
		"creator_user_id":   "u1",
		"sport":             "NFL",
		"draft_type":        "STANDARD",
		"draft_order":       "SNAKE",
		"total_rounds":      2,
		"time_per_pick_sec": 60,
		"max_participants":  2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Draft](t, rec)
	base := "/drafts/" + created.ID.String()

	for _, u := range []string{"u1", "u2"} {
		rec = doJSON(t, h, http.MethodPost, base+"/join", map[string]string{"user_id": u, "team_name": "Team " + u})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, base+"/start", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, base+"/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	current := decode[models.Draft](t, rec)
	assert.Equal(t, models.DraftStatusInProgress, current.Status)
	assert.Equal(t, "u1", current.CurrentPickerID)

	// Out of turn is a conflict.
	rec = doJSON(t, h, http.MethodPost, base+"/picks", map[string]string{"user_id": "u2", "player_id": "player-01"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodPost, base+"/picks", map[string]string{"user_id": "u1", "player_id": "player-01"})
	require.Equal(t, http.StatusCreated, rec.Code)
	pick := decode[models.DraftPick](t, rec)
	assert.Equal(t, "player-01", pick.PlayerID)
	assert.Equal(t, 1, pick.Round)

	rec = doJSON(t, h, http.MethodPost, base+"/cancel", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, base+"/", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	h := testHandler(t)

	t.Run("unknown draft is 404", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/drafts/"+uuid.NewString()+"/", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed draft id is 400", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/drafts/not-a-uuid/", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid create payload is 400", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/drafts", map[string]any{"sport": "NFL"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("start without enough seats is 422", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/drafts", map[string]any{
			"creator_user_id":   "u1",
			"sport":             "NFL",
			"draft_type":        "STANDARD",
			"draft_order":       "LINEAR",
			"total_rounds":      2,
			"time_per_pick_sec": 60,
			"max_participants":  2,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		created := decode[models.Draft](t, rec)

		rec = doJSON(t, h, http.MethodPost, "/drafts/"+created.ID.String()+"/start", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestListDraftsEndpoint(t *testing.T) {
	h := testHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/drafts", map[string]any{
		"creator_user_id":   "u1",
		"sport":             "NFL",
		"draft_type":        "STANDARD",
		"draft_order":       "SNAKE",
		"total_rounds":      2,
		"time_per_pick_sec": 60,
		"max_participants":  2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/drafts/?sport=NFL", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Draft](t, rec), 1)

	rec = doJSON(t, h, http.MethodGet, "/drafts/?sport=NBA", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Draft](t, rec))
}

func TestMockDraftEndpoints(t *testing.T) {
	h := testHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/mock-drafts", map[string]any{
		"user_id":       "user-1",
		"sport":         "NFL",
		"team_count":    4,
		"rounds":        3,
		"user_position": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	result := decode[models.MockDraftResult](t, rec)
	assert.Len(t, result.UserTeam, 3)
	assert.NotEmpty(t, result.Analysis.Grade)

	rec = doJSON(t, h, http.MethodGet, "/users/user-1/mock-drafts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.MockDraftResult](t, rec), 1)

	rec = doJSON(t, h, http.MethodGet, "/users/nobody/mock-drafts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.MockDraftResult](t, rec))

	rec = doJSON(t, h, http.MethodPost, "/mock-drafts", map[string]any{
		"user_id":       "user-1",
		"sport":         "NFL",
		"team_count":    4,
		"rounds":        3,
		"user_position": 9,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
