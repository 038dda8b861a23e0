package handlers

import (
	"net/http"

	"github.com/setpoint-app/setpoint/services"
)

type StatHandler struct {
	statService services.StatService
}

func NewStatHandler(statService services.StatService) *StatHandler {
	return &StatHandler{statService: statService}
}

func (h *StatHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := matchRequestIDs(w, r)
	if !ok {
		return
	}

	var input services.StatInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stat, err := h.statService.PutStat(r.Context(), matchID, userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stat": stat}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := matchRequestIDs(w, r)
	if !ok {
		return
	}

	stats, err := h.statService.ListStats(r.Context(), matchID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := matchRequestIDs(w, r)
	if !ok {
		return
	}
	statID, err := idParam(r, "statID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.statService.DeleteStat(r.Context(), matchID, statID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
