package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"buildledger/backend/middleware"
	"buildledger/backend/models"
	"buildledger/backend/services"
)

type invitationRequest struct {
	ProjectID string `json:"projectId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

func CreateInvitation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)

	var req invitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ProjectID == "" || req.Email == "" {
		http.Error(w, "projectId and email are required", http.StatusBadRequest)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleLabour
	}

	if !requirePermission(w, userID, models.ActionInviteMember, req.ProjectID) {
		return
	}

	invitedBy := models.Actor{ID: userID, Name: middleware.GetUserNameFromContext(r)}
	inv, err := services.CreateInvitation(req.ProjectID, req.Email, req.Role, invitedBy)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func GetProjectInvitations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	projectID := mux.Vars(r)["id"]

	if !requirePermission(w, userID, models.ActionInviteMember, projectID) {
		return
	}

	invitations, err := services.ListProjectInvitations(projectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if invitations == nil {
		invitations = []models.Invitation{}
	}
	writeJSON(w, http.StatusOK, invitations)
}

type acceptRequest struct {
	Token string `json:"token"`
}

func AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)

	var req acceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	user, err := services.GetUser(userID)
	if err != nil {
		if err == services.ErrNotFound {
			// First interaction: enroll under the verified identity
			user = &models.User{ID: userID, Name: middleware.GetUserNameFromContext(r)}
		} else {
			writeServiceError(w, err)
			return
		}
	}

	inv, err := services.AcceptInvitation(req.Token, *user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func CancelInvitation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	id := mux.Vars(r)["id"]

	inv, err := services.GetInvitation(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !requirePermission(w, userID, models.ActionInviteMember, inv.ProjectID) {
		return
	}

	if err := services.CancelInvitation(id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
