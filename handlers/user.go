package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"buildledger/backend/middleware"
	"buildledger/backend/models"
	"buildledger/backend/services"
)

type syncUserRequest struct {
	Username      string `json:"username"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
}

// SyncUser upserts the caller's profile after sign in. The id always comes
// from the verified token, never the body.
func SyncUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	if userID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return
	}

	var req syncUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		req.Name = req.Username
	}

	user := models.User{
		ID:            userID,
		Username:      req.Username,
		Name:          req.Name,
		Email:         req.Email,
		EmailVerified: req.EmailVerified,
	}
	if err := services.SyncUser(user); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func GetUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	user, err := services.GetUser(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type deviceTokenRequest struct {
	Token string `json:"token"`
}

// RegisterDeviceToken stores the caller's FCM registration token so the
// server can push to their phone.
func RegisterDeviceToken(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	if userID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return
	}

	var req deviceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	if err := services.SetDeviceToken(userID, req.Token); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
