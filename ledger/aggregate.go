package ledger

import (
	"github.com/shopspring/decimal"

	"buildledger/backend/models"
)

// RecomputeTotalSpent reduces a project's expenses to its total spent
// figure. Only approved, non-deleted expenses count. The scan is always run
// in full rather than patched incrementally, so the result cannot drift from
// the underlying records, and repeated calls over the same set are
// idempotent. Summation stays in decimal; currency never passes through a
// float.
func RecomputeTotalSpent(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if countsTowardTotal(e) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// ComputeSummary builds the per-project breakdowns in independent grouping
// passes. Soft-deleted expenses are excluded from everything; the monetary
// groupings additionally only count approved expenses, matching the total
// spent filter.
func ComputeSummary(expenses []models.Expense) models.ExpenseSummary {
	s := models.ExpenseSummary{
		TotalAmount:     decimal.Zero,
		CountByStatus:   make(map[string]int),
		CountByCategory: make(map[string]int),
		MonthlyTotals:   make(map[string]decimal.Decimal),
	}
	for _, e := range expenses {
		if e.IsDeleted {
			continue
		}
		s.CountByStatus[e.Status]++
		s.CountByCategory[e.Category]++
		if !countsTowardTotal(e) {
			continue
		}
		s.TotalAmount = s.TotalAmount.Add(e.Amount)
		key := e.ExpenseDate.Format("2006-01")
		if cur, ok := s.MonthlyTotals[key]; ok {
			s.MonthlyTotals[key] = cur.Add(e.Amount)
		} else {
			s.MonthlyTotals[key] = e.Amount
		}
	}
	return s
}

// CategoryTotals sums approved, non-deleted expenses per category.
func CategoryTotals(expenses []models.Expense) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		if !countsTowardTotal(e) {
			continue
		}
		if cur, ok := totals[e.Category]; ok {
			totals[e.Category] = cur.Add(e.Amount)
		} else {
			totals[e.Category] = e.Amount
		}
	}
	return totals
}

func countsTowardTotal(e models.Expense) bool {
	return e.Status == models.StatusApproved && !e.IsDeleted
}
