package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"buildledger/backend/middleware"
	"buildledger/backend/models"
	"buildledger/backend/services"
)

type projectRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Budget      decimal.Decimal `json:"budget"`
}

// projectResponse adds the derived remaining budget to the stored fields.
type projectResponse struct {
	models.Project
	RemainingBudget decimal.Decimal `json:"remainingBudget"`
}

func toProjectResponse(p models.Project) projectResponse {
	return projectResponse{Project: p, RemainingBudget: p.RemainingBudget()}
}

func CreateProject(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	if userID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return
	}

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Project name is required", http.StatusBadRequest)
		return
	}
	if req.Budget.IsNegative() {
		http.Error(w, "Budget cannot be negative", http.StatusBadRequest)
		return
	}

	creator := models.Actor{ID: userID, Name: middleware.GetUserNameFromContext(r)}
	project, err := services.CreateProject(creator, req.Name, req.Description, req.Budget)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProjectResponse(*project))
}

func GetProjects(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	if userID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return
	}

	projects, err := services.ListProjectsForUser(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	responses := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		responses = append(responses, toProjectResponse(p))
	}
	writeJSON(w, http.StatusOK, responses)
}

func GetProject(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	projectID := mux.Vars(r)["id"]

	if _, err := services.GetMember(projectID, userID); err != nil {
		if err == services.ErrNotFound {
			http.Error(w, "Forbidden: Not a project member", http.StatusForbidden)
			return
		}
		writeServiceError(w, err)
		return
	}

	project, err := services.GetProject(projectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectResponse(*project))
}

func UpdateProject(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	projectID := mux.Vars(r)["id"]

	if !requirePermission(w, userID, models.ActionEditProject, projectID) {
		return
	}

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Budget.IsNegative() {
		http.Error(w, "Budget cannot be negative", http.StatusBadRequest)
		return
	}

	if err := services.UpdateProject(projectID, req.Name, req.Description, req.Budget); err != nil {
		writeServiceError(w, err)
		return
	}

	project, err := services.GetProject(projectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectResponse(*project))
}

// RecomputeProject forces a full total recompute. Normally the server does
// this on every mutating operation; the endpoint exists for support
// tooling.
func RecomputeProject(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	projectID := mux.Vars(r)["id"]

	if !requirePermission(w, userID, models.ActionEditProject, projectID) {
		return
	}

	total, err := services.RecomputeTotalSpent(projectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"totalSpent": total.String()})
}

func GetProjectMembers(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	projectID := mux.Vars(r)["id"]

	if _, err := services.GetMember(projectID, userID); err != nil {
		if err == services.ErrNotFound {
			http.Error(w, "Forbidden: Not a project member", http.StatusForbidden)
			return
		}
		writeServiceError(w, err)
		return
	}

	members, err := services.ListMembers(projectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

type memberRequest struct {
	UserID      string                     `json:"userId"`
	Name        string                     `json:"name"`
	Role        string                     `json:"role"`
	Permissions models.DirectorPermissions `json:"permissions"`
}

func AddProjectMember(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	projectID := mux.Vars(r)["id"]

	if !requirePermission(w, userID, models.ActionInviteMember, projectID) {
		return
	}

	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "Member userId is required", http.StatusBadRequest)
		return
	}

	member := models.ProjectMember{
		ProjectID:   projectID,
		UserID:      req.UserID,
		Name:        req.Name,
		Role:        req.Role,
		Permissions: req.Permissions,
	}
	if err := services.AddMember(member); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func RemoveProjectMember(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	vars := mux.Vars(r)
	projectID := vars["id"]
	targetID := vars["userId"]

	if !requirePermission(w, userID, models.ActionRemoveMember, projectID) {
		return
	}

	if err := services.RemoveMember(projectID, targetID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
