package handlers

import (
	"net/http"

	"github.com/setpoint-app/setpoint/models"
	"github.com/setpoint-app/setpoint/services"
)

// ScoringHandler exposes the live-scoring operations of a match. All of
// them return the same score view that websocket subscribers receive.
type ScoringHandler struct {
	scoringService services.ScoringService
}

func NewScoringHandler(scoringService services.ScoringService) *ScoringHandler {
	return &ScoringHandler{scoringService: scoringService}
}

func (h *ScoringHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := matchRequestIDs(w, r)
	if !ok {
		return
	}

	view, err := h.scoringService.StartMatch(r.Context(), matchID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScoringHandler) AddPoint(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := matchRequestIDs(w, r)
	if !ok {
		return
	}

	var input struct {
		Side models.Side `json:"side"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.scoringService.AddPoint(r.Context(), matchID, userID, input.Side)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScoringHandler) UndoPoint(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := matchRequestIDs(w, r)
	if !ok {
		return
	}

	view, err := h.scoringService.UndoPoint(r.Context(), matchID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScoringHandler) End(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := matchRequestIDs(w, r)
	if !ok {
		return
	}

	// Тело не обязательно: завершить матч можно и без указания победителя.
	var input struct {
		Winner *models.Side `json:"winner"`
	}
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	view, err := h.scoringService.EndMatch(r.Context(), matchID, userID, input.Winner)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetScore is readable by any authenticated member of the organization
// owning the match, the scoreboard itself is not role-gated.
func (h *ScoringHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.scoringService.GetMatchScore(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
