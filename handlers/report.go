package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"buildledger/backend/ledger"
	"buildledger/backend/middleware"
	"buildledger/backend/models"
	"buildledger/backend/services"
)

// GetProjectSummary serves the aggregate breakdowns for a project: the
// exact-decimal total, status and category counts, and monthly totals.
func GetProjectSummary(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	projectID := mux.Vars(r)["id"]

	if !requirePermission(w, userID, models.ActionViewReports, projectID) {
		return
	}

	expenses, err := services.ListProjectExpenses(projectID, models.ExpenseFilter{IncludeDeleted: true})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ledger.ComputeSummary(expenses))
}

// GetCategoryTotals serves per-category spending for a project.
func GetCategoryTotals(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	projectID := mux.Vars(r)["id"]

	if !requirePermission(w, userID, models.ActionViewReports, projectID) {
		return
	}

	expenses, err := services.ListProjectExpenses(projectID, models.ExpenseFilter{})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var totals []models.CategoryTotal
	for category, total := range ledger.CategoryTotals(expenses) {
		totals = append(totals, models.CategoryTotal{Category: category, Total: total})
	}
	if totals == nil {
		totals = []models.CategoryTotal{}
	}
	writeJSON(w, http.StatusOK, totals)
}

// ExportProjectExpenses streams the project's expense list as an xlsx
// workbook.
func ExportProjectExpenses(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	projectID := mux.Vars(r)["id"]

	if !requirePermission(w, userID, models.ActionViewReports, projectID) {
		return
	}

	project, err := services.GetProject(projectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	expenses, err := services.ListProjectExpenses(projectID, models.ExpenseFilter{})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	f, err := services.ExportProjectExpenses(project, expenses)
	if err != nil {
		http.Error(w, "Failed to build export: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-expenses.xlsx"`, project.Name))
	if err := f.Write(w); err != nil {
		http.Error(w, "Failed to write export: "+err.Error(), http.StatusInternalServerError)
	}
}
