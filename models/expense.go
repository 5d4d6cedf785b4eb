package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Actor identifies the user behind an operation. Only the id and display
// name are carried; the authoritative identity lives in Firebase.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Transition records who moved an expense out of pending and when. A single
// struct covers both approval and rejection since an expense only ever
// transitions once.
type Transition struct {
	ActorID   string    `json:"actorId"`
	ActorName string    `json:"actorName"`
	At        time.Time `json:"at"`
}

type Expense struct {
	ID            string          `json:"id"`
	ProjectID     string          `json:"projectId"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Status        string          `json:"status"`        // pending, approved, rejected
	PaymentStatus string          `json:"paymentStatus"` // paid, partial, credit
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	ExpenseDate   time.Time       `json:"expenseDate"`
	ReceiptObject string          `json:"receiptObject,omitempty"`

	CreatedBy     string `json:"createdBy"`
	CreatedByName string `json:"createdByName,omitempty"`

	// Processed is set exactly once, when the expense leaves pending.
	Processed       *Transition `json:"processed,omitempty"`
	RejectionReason string      `json:"rejectionReason,omitempty"`

	IsDeleted bool       `json:"isDeleted"`
	DeletedBy string     `json:"deletedBy,omitempty"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
