package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"buildledger/backend/middleware"
	"buildledger/backend/services"
	"buildledger/backend/storage"
)

// maxReceiptSize caps receipt uploads at 10 MB.
const maxReceiptSize = 10 << 20

// UploadReceipt stores a receipt image for an expense and links it.
func UploadReceipt(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	id := mux.Vars(r)["id"]

	if !storage.Enabled() {
		http.Error(w, "Receipt storage is not configured", http.StatusServiceUnavailable)
		return
	}

	expense, err := services.GetExpense(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if _, err := services.GetMember(expense.ProjectID, userID); err != nil {
		http.Error(w, "Forbidden: Not a project member", http.StatusForbidden)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptSize)
	if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
		http.Error(w, "Invalid upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("receipt")
	if err != nil {
		http.Error(w, "Missing receipt file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	objectName, err := storage.UploadReceipt(r.Context(), expense.ProjectID, expense.ID, file, header.Size, contentType)
	if err != nil {
		http.Error(w, "Upload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := services.SetReceiptObject(expense.ID, objectName); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"receiptObject": objectName})
}

// GetReceiptURL returns a short-lived download link for an expense's
// receipt.
func GetReceiptURL(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	id := mux.Vars(r)["id"]

	if !storage.Enabled() {
		http.Error(w, "Receipt storage is not configured", http.StatusServiceUnavailable)
		return
	}

	expense, err := services.GetExpense(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if _, err := services.GetMember(expense.ProjectID, userID); err != nil {
		http.Error(w, "Forbidden: Not a project member", http.StatusForbidden)
		return
	}
	if expense.ReceiptObject == "" {
		http.Error(w, "Expense has no receipt", http.StatusNotFound)
		return
	}

	url, err := storage.ReceiptURL(r.Context(), expense.ReceiptObject)
	if err != nil {
		http.Error(w, "Failed to presign receipt: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
