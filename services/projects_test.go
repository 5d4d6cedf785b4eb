package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"buildledger/backend/ledger"
	"buildledger/backend/models"
)

func TestCreateProject_EnrollsCreator(t *testing.T) {
	setupTestDB()
	defer cleanupTestDB()

	creator := models.Actor{ID: testDirectorID, Name: "Svc Director"}
	p, err := CreateProject(creator, "Warehouse Extension", "", decimal.NewFromInt(80000))
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	member, err := GetMember(p.ID, testDirectorID)
	if err != nil {
		t.Fatalf("Creator not enrolled: %v", err)
	}
	if member.Role != models.RoleAdmin {
		t.Errorf("Expected creator role admin, got %s", member.Role)
	}

	loaded, err := GetProject(p.ID)
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if !loaded.Budget.Equal(decimal.NewFromInt(80000)) || !loaded.TotalSpent.IsZero() {
		t.Errorf("Unexpected stored amounts: budget=%s totalSpent=%s", loaded.Budget, loaded.TotalSpent)
	}
}

func TestRecomputeTotalSpent_SumsApprovedOnly(t *testing.T) {
	setupTestDB()
	defer cleanupTestDB()

	approved, err := CreateExpense(ledger.CreateInput{
		ProjectID:     testProjectID,
		Title:         "Blockwork",
		Amount:        decimal.NewFromInt(1200),
		PaymentStatus: models.PaymentStatusCredit,
		Creator:       models.Actor{ID: testAdminID, Name: "Svc Admin"},
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if approved.Status != models.StatusApproved {
		t.Fatalf("Admin expense should be approved, got %s", approved.Status)
	}

	_, err = CreateExpense(ledger.CreateInput{
		ProjectID:     testProjectID,
		Title:         "Pending scaffolding",
		Amount:        decimal.NewFromInt(900),
		PaymentStatus: models.PaymentStatusCredit,
		Creator:       models.Actor{ID: testLabourID, Name: "Svc Labour"},
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	total, err := RecomputeTotalSpent(testProjectID)
	if err != nil {
		t.Fatalf("RecomputeTotalSpent failed: %v", err)
	}
	if total.String() != "1200" {
		t.Errorf("Expected total 1200 from approved expenses only, got %s", total)
	}
}

func TestRecomputeTotalSpent_BumpsVersion(t *testing.T) {
	setupTestDB()
	defer cleanupTestDB()

	before, _ := GetProject(testProjectID)
	if _, err := RecomputeTotalSpent(testProjectID); err != nil {
		t.Fatalf("RecomputeTotalSpent failed: %v", err)
	}
	after, _ := GetProject(testProjectID)

	if after.Version != before.Version+1 {
		t.Errorf("Expected version %d, got %d", before.Version+1, after.Version)
	}
}

func TestRecomputeTotalSpent_MissingProject(t *testing.T) {
	setupTestDB()
	defer cleanupTestDB()

	if _, err := RecomputeTotalSpent("missing-project"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRemoveMember_MissingReturnsNotFound(t *testing.T) {
	setupTestDB()
	defer cleanupTestDB()

	if err := RemoveMember(testProjectID, "nobody"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
