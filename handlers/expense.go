package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"buildledger/backend/ledger"
	"buildledger/backend/middleware"
	"buildledger/backend/models"
	"buildledger/backend/services"
)

type expenseRequest struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus string          `json:"paymentStatus"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	ExpenseDate   time.Time       `json:"expenseDate"`
}

func GetProjectExpenses(w http.ResponseWriter, r *http.Request) {
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

	filter := models.ExpenseFilter{
		Status:         r.URL.Query().Get("status"),
		Category:       r.URL.Query().Get("category"),
		PaymentStatus:  r.URL.Query().Get("paymentStatus"),
		IncludeDeleted: r.URL.Query().Get("includeDeleted") == "true",
	}
	if m := r.URL.Query().Get("month"); m != "" {
		if month, err := strconv.Atoi(m); err == nil && month >= 1 && month <= 12 {
			filter.Month = &month
		}
	}
	if y := r.URL.Query().Get("year"); y != "" {
		if year, err := strconv.Atoi(y); err == nil {
			filter.Year = &year
		}
	}

	expenses, err := services.ListProjectExpenses(projectID, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func AddExpense(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	projectID := mux.Vars(r)["id"]

	if !requirePermission(w, userID, models.ActionCreateExpense, projectID) {
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "Expense title is required", http.StatusBadRequest)
		return
	}
	if req.Amount.IsNegative() {
		http.Error(w, "Amount cannot be negative", http.StatusBadRequest)
		return
	}
	switch req.PaymentStatus {
	case models.PaymentStatusPaid, models.PaymentStatusPartial, models.PaymentStatusCredit:
	default:
		http.Error(w, "Invalid payment status", http.StatusBadRequest)
		return
	}

	expense, err := services.CreateExpense(ledger.CreateInput{
		ProjectID:     projectID,
		Title:         req.Title,
		Description:   req.Description,
		Amount:        req.Amount,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: req.PaymentStatus,
		PaidAmount:    req.PaidAmount,
		ExpenseDate:   req.ExpenseDate,
		Creator:       models.Actor{ID: userID, Name: middleware.GetUserNameFromContext(r)},
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	services.LogExpenseAudit("create", expense, models.Actor{ID: userID})
	writeJSON(w, http.StatusCreated, expense)
}

func GetExpense(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	id := mux.Vars(r)["id"]

	expense, err := services.GetExpense(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if _, err := services.GetMember(expense.ProjectID, userID); err != nil {
		http.Error(w, "Forbidden: Not a project member", http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func UpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	id := mux.Vars(r)["id"]

	expense, err := services.GetExpense(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !requirePermission(w, userID, models.ActionEditProject, expense.ProjectID) {
		return
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Amount.IsNegative() {
		http.Error(w, "Amount cannot be negative", http.StatusBadRequest)
		return
	}

	updated, err := services.UpdateExpenseAmount(id, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	services.LogExpenseAudit("amount_edit", updated, models.Actor{ID: userID})
	writeJSON(w, http.StatusOK, updated)
}

func ApproveExpense(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	id := mux.Vars(r)["id"]

	expense, err := services.GetExpense(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !requirePermission(w, userID, models.ActionApproveExpense, expense.ProjectID) {
		return
	}

	approver := models.Actor{ID: userID, Name: middleware.GetUserNameFromContext(r)}
	approved, err := services.ApproveExpense(id, approver)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	services.LogExpenseAudit("approve", approved, approver)
	writeJSON(w, http.StatusOK, approved)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func RejectExpense(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	id := mux.Vars(r)["id"]

	expense, err := services.GetExpense(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !requirePermission(w, userID, models.ActionApproveExpense, expense.ProjectID) {
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rejecter := models.Actor{ID: userID, Name: middleware.GetUserNameFromContext(r)}
	rejected, err := services.RejectExpense(id, rejecter, req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	services.LogExpenseAudit("reject", rejected, rejecter)
	writeJSON(w, http.StatusOK, rejected)
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func RecordExpensePayment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	id := mux.Vars(r)["id"]

	expense, err := services.GetExpense(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !requirePermission(w, userID, models.ActionRecordPayment, expense.ProjectID) {
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Amount.IsNegative() {
		http.Error(w, "Payment amount cannot be negative", http.StatusBadRequest)
		return
	}

	updated, err := services.RecordPayment(id, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	services.LogExpenseAudit("payment", updated, models.Actor{ID: userID})
	writeJSON(w, http.StatusOK, updated)
}

func DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	id := mux.Vars(r)["id"]

	expense, err := services.GetExpense(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !requirePermission(w, userID, models.ActionDeleteExpense, expense.ProjectID) {
		return
	}

	deleter := models.Actor{ID: userID, Name: middleware.GetUserNameFromContext(r)}
	deleted, err := services.DeleteExpense(id, deleter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	services.LogExpenseAudit("soft_delete", deleted, deleter)
	writeJSON(w, http.StatusOK, deleted)
}

func RestoreExpense(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	id := mux.Vars(r)["id"]

	expense, err := services.GetExpense(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !requirePermission(w, userID, models.ActionRestoreExpense, expense.ProjectID) {
		return
	}

	restored, err := services.RestoreExpense(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	services.LogExpenseAudit("restore", restored, models.Actor{ID: userID})
	writeJSON(w, http.StatusOK, restored)
}
