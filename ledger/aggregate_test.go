package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buildledger/backend/models"
)

func expenseWith(status, category string, amount string, date time.Time, deleted bool) models.Expense {
	return models.Expense{
		ID:          "e-" + status + "-" + amount,
		ProjectID:   "p-1",
		Title:       "fixture",
		Amount:      dec(amount),
		Category:    category,
		Status:      status,
		ExpenseDate: date,
		IsDeleted:   deleted,
	}
}

func TestRecomputeTotalSpent_FilterCorrectness(t *testing.T) {
	jan := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	set := []models.Expense{
		expenseWith(models.StatusApproved, "materials", "1000", jan, false),
		expenseWith(models.StatusApproved, "labour", "250.75", jan, false),
		expenseWith(models.StatusPending, "materials", "9999", jan, false),
		expenseWith(models.StatusRejected, "materials", "500", jan, false),
		expenseWith(models.StatusApproved, "materials", "800", jan, true),
	}

	total := RecomputeTotalSpent(set)
	assert.True(t, total.Equal(dec("1250.75")), "got %s", total)

	// Pending, rejected and deleted expenses never move the total.
	withoutNoise := RecomputeTotalSpent(set[:2])
	assert.True(t, total.Equal(withoutNoise))
}

func TestRecomputeTotalSpent_Idempotent(t *testing.T) {
	jan := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	set := []models.Expense{
		expenseWith(models.StatusApproved, "materials", "10.10", jan, false),
		expenseWith(models.StatusApproved, "labour", "20.20", jan, false),
		expenseWith(models.StatusApproved, "plant", "30.30", jan, false),
	}

	first := RecomputeTotalSpent(set)
	second := RecomputeTotalSpent(set)
	assert.True(t, first.Equal(second))

	// Order must not matter either.
	reversed := []models.Expense{set[2], set[0], set[1]}
	assert.True(t, first.Equal(RecomputeTotalSpent(reversed)))
}

func TestRecomputeTotalSpent_ExactDecimalSum(t *testing.T) {
	// 0.1 summed ten times drifts under float64; decimal must land on 1 exactly.
	jan := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	var set []models.Expense
	for i := 0; i < 10; i++ {
		set = append(set, expenseWith(models.StatusApproved, "materials", "0.1", jan, false))
	}
	assert.True(t, RecomputeTotalSpent(set).Equal(dec("1")))
}

func TestRecomputeTotalSpent_Empty(t *testing.T) {
	assert.True(t, RecomputeTotalSpent(nil).Equal(decimal.Zero))
}

func TestComputeSummary(t *testing.T) {
	jan := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	set := []models.Expense{
		expenseWith(models.StatusApproved, "materials", "1000", jan, false),
		expenseWith(models.StatusApproved, "materials", "500", feb, false),
		expenseWith(models.StatusApproved, "labour", "200", feb, false),
		expenseWith(models.StatusPending, "labour", "75", feb, false),
		expenseWith(models.StatusRejected, "plant", "60", feb, false),
		expenseWith(models.StatusApproved, "plant", "3000", feb, true), // deleted, invisible everywhere
	}

	s := ComputeSummary(set)

	assert.True(t, s.TotalAmount.Equal(dec("1700")), "got %s", s.TotalAmount)
	assert.Equal(t, map[string]int{
		models.StatusApproved: 3,
		models.StatusPending:  1,
		models.StatusRejected: 1,
	}, s.CountByStatus)
	assert.Equal(t, 2, s.CountByCategory["materials"])
	assert.Equal(t, 2, s.CountByCategory["labour"])

	require.Len(t, s.MonthlyTotals, 2)
	assert.True(t, s.MonthlyTotals["2025-01"].Equal(dec("1000")))
	assert.True(t, s.MonthlyTotals["2025-02"].Equal(dec("700")))
}

func TestCategoryTotals(t *testing.T) {
	jan := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	set := []models.Expense{
		expenseWith(models.StatusApproved, "materials", "100", jan, false),
		expenseWith(models.StatusApproved, "materials", "50", jan, false),
		expenseWith(models.StatusPending, "materials", "9000", jan, false),
	}
	totals := CategoryTotals(set)
	require.Len(t, totals, 1)
	assert.True(t, totals["materials"].Equal(dec("150")))
}
