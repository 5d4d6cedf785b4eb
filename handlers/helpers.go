package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"buildledger/backend/ledger"
	"buildledger/backend/services"
)

// writeJSON writes a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeServiceError maps business conditions to status codes. Anything
// unrecognized is an infrastructure failure and surfaces as a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ledger.ErrAlreadyProcessed),
		errors.Is(err, ledger.ErrAlreadyDeleted),
		errors.Is(err, ledger.ErrNotDeleted):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ledger.ErrEmptyReason):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ledger.ErrInvitationExpired):
		http.Error(w, err.Error(), http.StatusGone)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// requirePermission runs the single authorization check before a ledger
// operation. It writes the response on failure and reports whether the
// handler may proceed.
func requirePermission(w http.ResponseWriter, userID, action, projectID string) bool {
	allowed, err := services.CanPerform(userID, action, projectID)
	if err != nil {
		http.Error(w, "Failed to check permissions: "+err.Error(), http.StatusInternalServerError)
		return false
	}
	if !allowed {
		http.Error(w, "Forbidden: Insufficient permissions", http.StatusForbidden)
		return false
	}
	return true
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
