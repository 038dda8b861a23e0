package handlers

import (
	"net/http"

	"github.com/setpoint-app/setpoint/middleware"
	"github.com/setpoint-app/setpoint/models"
	"github.com/setpoint-app/setpoint/services"
)

type OrganizationHandler struct {
	orgService services.OrganizationService
}

func NewOrganizationHandler(orgService services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.CreateOrganizationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	org, err := h.orgService.Create(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"organization": org}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	orgs, err := h.orgService.ListForUser(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"organizations": orgs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}

	org, err := h.orgService.GetByID(r.Context(), orgID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"organization": org}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}

	var input services.UpdateOrganizationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	org, err := h.orgService.Update(r.Context(), orgID, userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"organization": org}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *OrganizationHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}

	defer r.Body.Close()
	org, err := h.orgService.UploadLogo(r.Context(), orgID, userID, r.Header.Get("Content-Type"), r.Body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"organization": org}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *OrganizationHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}

	members, err := h.orgService.ListMembers(r.Context(), orgID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"members": members}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *OrganizationHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}
	memberID, err := idParam(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Role models.OrgRole `json:"role"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.orgService.UpdateMemberRole(r.Context(), orgID, userID, memberID, input.Role); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "member role updated"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *OrganizationHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}
	memberID, err := idParam(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.orgService.RemoveMember(r.Context(), orgID, userID, memberID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrganizationHandler) requestIDs(w http.ResponseWriter, r *http.Request) (userID, orgID int, ok bool) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return 0, 0, false
	}
	orgID, err = idParam(r, "orgID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	return userID, orgID, true
}
