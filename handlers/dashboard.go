package handlers

import (
	"net/http"

	"github.com/setpoint-app/setpoint/middleware"
	"github.com/setpoint-app/setpoint/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) GetCounts(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	orgID, err := idParam(r, "orgID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	counts, err := h.dashboardService.GetCounts(r.Context(), orgID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"counts": counts}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
