package models

import "github.com/shopspring/decimal"

// ExpenseFilter narrows expense listings. Zero values mean "no filter".
type ExpenseFilter struct {
	Status         string `json:"status,omitempty"`
	Category       string `json:"category,omitempty"`
	PaymentStatus  string `json:"paymentStatus,omitempty"`
	Month          *int   `json:"month,omitempty"` // 1-12
	Year           *int   `json:"year,omitempty"`
	IncludeDeleted bool   `json:"includeDeleted,omitempty"`
}

// ExpenseSummary is the per-project breakdown served by the reports
// endpoints. Totals only count approved, non-deleted expenses; the status
// counts cover everything that is not soft-deleted.
type ExpenseSummary struct {
	TotalAmount     decimal.Decimal            `json:"totalAmount"`
	CountByStatus   map[string]int             `json:"countByStatus"`
	CountByCategory map[string]int             `json:"countByCategory"`
	MonthlyTotals   map[string]decimal.Decimal `json:"monthlyTotals"` // keyed "2006-01"
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}
