package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"buildledger/backend/ledger"
	"buildledger/backend/models"
)

func TestUpdateExpenseAmount_RaisingReopensBalance(t *testing.T) {
	setupTestDB()
	defer cleanupTestDB()

	e, err := CreateExpense(ledger.CreateInput{
		ProjectID:     testProjectID,
		Title:         "Timber",
		Amount:        decimal.NewFromInt(100),
		PaymentStatus: models.PaymentStatusPaid,
		Creator:       models.Actor{ID: testAdminID, Name: "Svc Admin"},
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if e.PaymentStatus != models.PaymentStatusPaid {
		t.Fatalf("Expected paid, got %s", e.PaymentStatus)
	}

	updated, err := UpdateExpenseAmount(e.ID, decimal.NewFromInt(200))
	if err != nil {
		t.Fatalf("UpdateExpenseAmount failed: %v", err)
	}
	if updated.PaymentStatus != models.PaymentStatusPartial {
		t.Errorf("Expected partial after raising a settled amount, got %s", updated.PaymentStatus)
	}
	if updated.PaidAmount.String() != "100" {
		t.Errorf("Expected paidAmount 100 to carry over, got %s", updated.PaidAmount)
	}
}

func TestUpdateExpenseAmount_LoweringBelowPaidSettles(t *testing.T) {
	setupTestDB()
	defer cleanupTestDB()

	e, err := CreateExpense(ledger.CreateInput{
		ProjectID:     testProjectID,
		Title:         "Gravel",
		Amount:        decimal.NewFromInt(500),
		PaymentStatus: models.PaymentStatusPartial,
		PaidAmount:    decimal.NewFromInt(300),
		Creator:       models.Actor{ID: testAdminID, Name: "Svc Admin"},
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	updated, err := UpdateExpenseAmount(e.ID, decimal.NewFromInt(250))
	if err != nil {
		t.Fatalf("UpdateExpenseAmount failed: %v", err)
	}
	if updated.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("Expected paid when paidAmount covers the new amount, got %s", updated.PaymentStatus)
	}
	if updated.PaidAmount.String() != "250" {
		t.Errorf("Expected paidAmount clamped to 250, got %s", updated.PaidAmount)
	}
}
