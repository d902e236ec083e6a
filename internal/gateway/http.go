// Package gateway binds the draft engine to HTTP and WebSocket transports.
package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/draftarena/engine/internal/draft"
	"github.com/draftarena/engine/internal/mockdraft"
	"github.com/draftarena/engine/internal/models"
)

// Handler exposes the engine's public surface over HTTP.
type Handler struct {
	engine *draft.Engine
	sim    *mockdraft.Simulator
	ws     *ConnectionManager
}

func NewHandler(engine *draft.Engine, sim *mockdraft.Simulator, ws *ConnectionManager) *Handler {
	return &Handler{engine: engine, sim: sim, ws: ws}
}

// Routes builds the route tree.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/drafts", func(r chi.Router) {
		r.Post("/", h.createDraft)
		r.Get("/", h.listDrafts)
		r.Route("/{draftID}", func(r chi.Router) {
			r.Get("/", h.getDraft)
			r.Delete("/", h.removeDraft)
			r.Post("/join", h.joinDraft)
			r.Post("/leave", h.leaveDraft)
			r.Post("/ready", h.setReady)
			r.Post("/autopick", h.setAutoPick)
			r.Post("/start", h.startDraft)
			r.Post("/pause", h.pauseDraft)
			r.Post("/resume", h.resumeDraft)
			r.Post("/cancel", h.cancelDraft)
			r.Post("/picks", h.makePick)
		})
	})

	r.Post("/mock-drafts", h.runMockDraft)
	r.Get("/users/{userID}/mock-drafts", h.getUserMockDrafts)

	if h.ws != nil {
		r.Get("/ws/drafts/{draftID}", h.subscribe)
	}

	return r
}

func (h *Handler) createDraft(w http.ResponseWriter, r *http.Request) {
	var req draft.CreateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	d, err := h.engine.CreateDraft(r.Context(), req)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, d)
}

func (h *Handler) listDrafts(w http.ResponseWriter, r *http.Request) {
	filter := draft.ListFilter{
		Sport:     r.URL.Query().Get("sport"),
		DraftType: models.DraftType(r.URL.Query().Get("draft_type")),
		Status:    models.DraftStatus(r.URL.Query().Get("status")),
	}
	respondJSON(w, http.StatusOK, h.engine.ListDrafts(r.Context(), filter))
}

func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	d, err := h.engine.GetDraft(r.Context(), id)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (h *Handler) removeDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.engine.RemoveDraft(r.Context(), id); err != nil {
		respondEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type joinRequest struct {
	UserID   string `json:"user_id"`
	TeamName string `json:"team_name,omitempty"`
}

func (h *Handler) joinDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	d, err := h.engine.JoinDraft(r.Context(), id, req.UserID, req.TeamName)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (h *Handler) leaveDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.engine.LeaveDraft(r.Context(), id, req.UserID); err != nil {
		respondEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type readyRequest struct {
	UserID  string `json:"user_id"`
	IsReady bool   `json:"is_ready"`
}

func (h *Handler) setReady(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req readyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.engine.SetParticipantReady(r.Context(), id, req.UserID, req.IsReady); err != nil {
		respondEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type autoPickRequest struct {
	UserID  string `json:"user_id"`
	Enabled bool   `json:"enabled"`
}

func (h *Handler) setAutoPick(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req autoPickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.engine.SetAutoPick(r.Context(), id, req.UserID, req.Enabled); err != nil {
		respondEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) startDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.engine.StartDraft(r.Context(), id); err != nil {
		respondEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type pauseRequest struct {
	Reason string `json:"reason,omitempty"`
}

func (h *Handler) pauseDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req pauseRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if err := h.engine.PauseDraft(r.Context(), id, req.Reason); err != nil {
		respondEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) resumeDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.engine.ResumeDraft(r.Context(), id); err != nil {
		respondEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cancelDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.engine.CancelDraft(r.Context(), id); err != nil {
		respondEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type pickRequest struct {
	UserID       string   `json:"user_id"`
	PlayerID     string   `json:"player_id"`
	AuctionPrice *float64 `json:"auction_price,omitempty"`
}

func (h *Handler) makePick(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req pickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	pick, err := h.engine.MakePick(r.Context(), draft.MakePickRequest{
		DraftID:      id,
		UserID:       req.UserID,
		PlayerID:     req.PlayerID,
		AuctionPrice: req.AuctionPrice,
	})
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, pick)
}

func (h *Handler) runMockDraft(w http.ResponseWriter, r *http.Request) {
	var req mockdraft.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.sim.Run(r.Context(), req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

func (h *Handler) getUserMockDrafts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	results := h.sim.UserResults(userID)
	if results == nil {
		results = []*models.MockDraftResult{}
	}
	respondJSON(w, http.StatusOK, results)
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := h.engine.GetDraft(r.Context(), id); err != nil {
		respondEngineError(w, err)
		return
	}
	userID := r.URL.Query().Get("user_id")
	if err := h.ws.Subscribe(w, r, userID, id); err != nil {
		log.Error().Err(err).Str("draft_id", id.String()).Msg("websocket subscribe failed")
	}
}

func draftID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "draftID"))
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

// respondEngineError maps engine error kinds onto HTTP statuses.
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, draft.ErrDraftNotFound), errors.Is(err, draft.ErrParticipantNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, draft.ErrNotYourTurn),
		errors.Is(err, draft.ErrAlreadyJoined),
		errors.Is(err, draft.ErrDraftFull),
		errors.Is(err, draft.ErrPlayerUnavailable):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, draft.ErrBudgetExceeded):
		respondError(w, http.StatusPaymentRequired, err)
	case errors.Is(err, draft.ErrDraftAlreadyStarted),
		errors.Is(err, draft.ErrDraftInProgress),
		errors.Is(err, draft.ErrDraftNotInProgress),
		errors.Is(err, draft.ErrDraftCancelled),
		errors.Is(err, draft.ErrNotReady),
		errors.Is(err, draft.ErrInvalidState):
		respondError(w, http.StatusUnprocessableEntity, err)
	default:
		respondError(w, http.StatusBadRequest, err)
	}
}
