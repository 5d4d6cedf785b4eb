package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"buildledger/backend/models"
	"buildledger/backend/services"
)

func postExpense(t *testing.T, asUserID, asName string, body map[string]interface{}) (*httptest.ResponseRecorder, models.Expense) {
	t.Helper()

	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/projects/"+TestProjectID+"/expenses", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req = mux.SetURLVars(req, map[string]string{"id": TestProjectID})
	req = SetupTestAuth(req, asUserID, asName)

	w := httptest.NewRecorder()
	AddExpense(w, req)

	var e models.Expense
	if w.Code == http.StatusCreated {
		if err := json.NewDecoder(w.Body).Decode(&e); err != nil {
			t.Fatalf("Failed to decode expense: %v", err)
		}
	}
	return w, e
}

func expenseAction(t *testing.T, handler http.HandlerFunc, method, path, expenseID, asUserID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req = mux.SetURLVars(req, map[string]string{"id": expenseID})
	req = SetupTestAuth(req, asUserID, "")

	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestAddExpense_LabourStartsPending(t *testing.T) {
	SetupTestDB()
	defer CleanupTestDB()

	w, e := postExpense(t, TestLabourID, "Test Labour", map[string]interface{}{
		"title":         "Cement bags",
		"amount":        "1000",
		"category":      "materials",
		"paymentStatus": "credit",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	if e.Status != models.StatusPending {
		t.Errorf("Expected status pending, got %s", e.Status)
	}
	if !e.PaidAmount.IsZero() {
		t.Errorf("Expected paidAmount 0 for credit, got %s", e.PaidAmount)
	}

	project, err := services.GetProject(TestProjectID)
	if err != nil {
		t.Fatalf("Failed to load project: %v", err)
	}
	if !project.TotalSpent.IsZero() {
		t.Errorf("Pending expense must not change totalSpent, got %s", project.TotalSpent)
	}
}

func TestAddExpense_AdminAutoApproved(t *testing.T) {
	SetupTestDB()
	defer CleanupTestDB()

	w, e := postExpense(t, TestAdminID, "Test Admin", map[string]interface{}{
		"title":         "Excavator rental",
		"amount":        "2000",
		"paymentStatus": "credit",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	if e.Status != models.StatusApproved {
		t.Errorf("Expected admin-created expense to be approved, got %s", e.Status)
	}
	if e.Processed == nil || e.Processed.ActorID != TestAdminID {
		t.Error("Expected approval stamped with the admin's identity")
	}

	project, _ := services.GetProject(TestProjectID)
	if project.TotalSpent.String() != "2000" {
		t.Errorf("Expected totalSpent 2000 after auto-approval, got %s", project.TotalSpent)
	}
}

func TestAddExpense_DirectorNotAutoApproved(t *testing.T) {
	SetupTestDB()
	defer CleanupTestDB()

	_, e := postExpense(t, TestDirectorID, "Test Director", map[string]interface{}{
		"title":         "Survey fees",
		"amount":        "300",
		"paymentStatus": "paid",
	})

	if e.Status != models.StatusPending {
		t.Errorf("Director-created expenses must start pending, got %s", e.Status)
	}
}

func TestApproveExpense_FullFlow(t *testing.T) {
	SetupTestDB()
	defer CleanupTestDB()

	_, e := postExpense(t, TestLabourID, "Test Labour", map[string]interface{}{
		"title":         "Cement bags",
		"amount":        "1000",
		"paymentStatus": "credit",
	})

	w := expenseAction(t, ApproveExpense, "POST", "/expenses/"+e.ID+"/approve", e.ID, TestAdminID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	project, _ := services.GetProject(TestProjectID)
	if project.TotalSpent.String() != "1000" {
		t.Errorf("Expected totalSpent 1000 after approval, got %s", project.TotalSpent)
	}

	// A second approval must be rejected with a conflict.
	w = expenseAction(t, ApproveExpense, "POST", "/expenses/"+e.ID+"/approve", e.ID, TestAdminID, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status %d on double approve, got %d", http.StatusConflict, w.Code)
	}
}

func TestApproveExpense_LabourForbidden(t *testing.T) {
	SetupTestDB()
	defer CleanupTestDB()

	_, e := postExpense(t, TestLabourID, "Test Labour", map[string]interface{}{
		"title":         "Cement bags",
		"amount":        "1000",
		"paymentStatus": "credit",
	})

	w := expenseAction(t, ApproveExpense, "POST", "/expenses/"+e.ID+"/approve", e.ID, TestLabourID, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status %d, got %d", http.StatusForbidden, w.Code)
	}
}

func TestRejectExpense_RequiresReason(t *testing.T) {
	SetupTestDB()
	defer CleanupTestDB()

	_, e := postExpense(t, TestLabourID, "Test Labour", map[string]interface{}{
		"title":         "Cement bags",
		"amount":        "1000",
		"paymentStatus": "credit",
	})

	w := expenseAction(t, RejectExpense, "POST", "/expenses/"+e.ID+"/reject", e.ID, TestAdminID,
		map[string]string{"reason": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d for empty reason, got %d", http.StatusBadRequest, w.Code)
	}

	w = expenseAction(t, RejectExpense, "POST", "/expenses/"+e.ID+"/reject", e.ID, TestAdminID,
		map[string]string{"reason": "no receipt attached"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	project, _ := services.GetProject(TestProjectID)
	if !project.TotalSpent.IsZero() {
		t.Errorf("Rejected expense must not change totalSpent, got %s", project.TotalSpent)
	}
}

func TestRecordPayment_ClampsAtAmount(t *testing.T) {
	SetupTestDB()
	defer CleanupTestDB()

	_, e := postExpense(t, TestLabourID, "Test Labour", map[string]interface{}{
		"title":         "Cement bags",
		"amount":        "1000",
		"paymentStatus": "credit",
	})

	w := expenseAction(t, RecordExpensePayment, "POST", "/expenses/"+e.ID+"/payments", e.ID, TestAdminID,
		map[string]string{"amount": "400"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var updated models.Expense
	json.NewDecoder(w.Body).Decode(&updated)
	if updated.PaidAmount.String() != "400" || updated.PaymentStatus != models.PaymentStatusPartial {
		t.Errorf("Expected partial 400, got %s %s", updated.PaymentStatus, updated.PaidAmount)
	}

	w = expenseAction(t, RecordExpensePayment, "POST", "/expenses/"+e.ID+"/payments", e.ID, TestAdminID,
		map[string]string{"amount": "700"})
	json.NewDecoder(w.Body).Decode(&updated)
	if updated.PaidAmount.String() != "1000" || updated.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("Expected paid 1000 after clamp, got %s %s", updated.PaymentStatus, updated.PaidAmount)
	}
}

func TestDeleteAndRestoreExpense(t *testing.T) {
	SetupTestDB()
	defer CleanupTestDB()

	_, e := postExpense(t, TestLabourID, "Test Labour", map[string]interface{}{
		"title":         "Cement bags",
		"amount":        "1000",
		"paymentStatus": "credit",
	})
	expenseAction(t, ApproveExpense, "POST", "/expenses/"+e.ID+"/approve", e.ID, TestAdminID, nil)

	// Director holds the delete capability in the test fixture.
	w := expenseAction(t, DeleteExpense, "DELETE", "/expenses/"+e.ID, e.ID, TestDirectorID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	project, _ := services.GetProject(TestProjectID)
	if !project.TotalSpent.IsZero() {
		t.Errorf("Deleting the only approved expense must zero totalSpent, got %s", project.TotalSpent)
	}

	// Deleting again conflicts.
	w = expenseAction(t, DeleteExpense, "DELETE", "/expenses/"+e.ID, e.ID, TestDirectorID, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status %d on double delete, got %d", http.StatusConflict, w.Code)
	}

	// Restore brings the amount back into the aggregate.
	w = expenseAction(t, RestoreExpense, "POST", "/expenses/"+e.ID+"/restore", e.ID, TestAdminID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	project, _ = services.GetProject(TestProjectID)
	if project.TotalSpent.String() != "1000" {
		t.Errorf("Expected totalSpent 1000 after restore, got %s", project.TotalSpent)
	}
}

func TestDeleteExpense_LabourForbidden(t *testing.T) {
	SetupTestDB()
	defer CleanupTestDB()

	_, e := postExpense(t, TestLabourID, "Test Labour", map[string]interface{}{
		"title":         "Cement bags",
		"amount":        "1000",
		"paymentStatus": "credit",
	})

	w := expenseAction(t, DeleteExpense, "DELETE", "/expenses/"+e.ID, e.ID, TestLabourID, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status %d, got %d", http.StatusForbidden, w.Code)
	}
}

func TestGetProjectExpenses_ExcludesDeleted(t *testing.T) {
	SetupTestDB()
	defer CleanupTestDB()

	_, kept := postExpense(t, TestLabourID, "Test Labour", map[string]interface{}{
		"title":         "Kept",
		"amount":        "100",
		"paymentStatus": "credit",
	})
	_, dropped := postExpense(t, TestLabourID, "Test Labour", map[string]interface{}{
		"title":         "Dropped",
		"amount":        "200",
		"paymentStatus": "credit",
	})
	expenseAction(t, DeleteExpense, "DELETE", "/expenses/"+dropped.ID, dropped.ID, TestAdminID, nil)

	req := httptest.NewRequest("GET", "/projects/"+TestProjectID+"/expenses", nil)
	req = mux.SetURLVars(req, map[string]string{"id": TestProjectID})
	req = SetupTestAuth(req, TestLabourID, "")
	w := httptest.NewRecorder()
	GetProjectExpenses(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var expenses []models.Expense
	json.NewDecoder(w.Body).Decode(&expenses)
	if len(expenses) != 1 || expenses[0].ID != kept.ID {
		t.Errorf("Expected only the non-deleted expense, got %d records", len(expenses))
	}
}
