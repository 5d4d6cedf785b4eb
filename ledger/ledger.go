// Package ledger holds the expense state-transition rules. Every function
// here is pure: records come in as values, records and effect flags go out,
// and all reads and writes stay with the caller. That keeps the rules
// testable without a database and keeps the project total projection out of
// reach: the ledger only reports whether it must be recomputed.
package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"buildledger/backend/models"
)

// CreateInput carries the caller-supplied fields for a new expense.
type CreateInput struct {
	ProjectID     string
	Title         string
	Description   string
	Amount        decimal.Decimal
	Category      string
	PaymentMethod string
	PaymentStatus string
	// PaidAmount is only consulted when PaymentStatus is partial.
	PaidAmount  decimal.Decimal
	ExpenseDate time.Time
	Creator     models.Actor
}

// AdminNotice is a notification obligation the caller must dispatch to the
// project admin. The ledger decides whether to notify; sending is not its
// concern.
type AdminNotice struct {
	DeleterName  string
	ExpenseTitle string
	ProjectID    string
}

// Effects reports the follow-up work an operation requires.
type Effects struct {
	RecomputeTotal bool
	Notice         *AdminNotice
}

// Create builds a new expense record. Privileged (admin) creators are
// auto-approved at creation; everyone else starts pending. The returned
// bool tells the caller whether the project total must be recomputed.
func Create(in CreateInput, creatorIsPrivileged bool, now time.Time) (models.Expense, bool) {
	e := models.Expense{
		ProjectID:     in.ProjectID,
		Title:         in.Title,
		Description:   in.Description,
		Amount:        in.Amount,
		Category:      in.Category,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: in.PaymentStatus,
		ExpenseDate:   in.ExpenseDate,
		CreatedBy:     in.Creator.ID,
		CreatedByName: in.Creator.Name,
		Status:        models.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if e.ExpenseDate.IsZero() {
		e.ExpenseDate = now
	}

	switch in.PaymentStatus {
	case models.PaymentStatusPaid:
		e.PaidAmount = in.Amount
	case models.PaymentStatusCredit:
		e.PaidAmount = decimal.Zero
	default:
		e.PaymentStatus = models.PaymentStatusPartial
		e.PaidAmount = clamp(in.PaidAmount, in.Amount)
	}
	// A fully covered balance is paid regardless of the requested status. A
	// zero-amount credit expense owes nothing, so it lands here too.
	if e.PaidAmount.GreaterThanOrEqual(e.Amount) {
		e.PaymentStatus = models.PaymentStatusPaid
	}

	if creatorIsPrivileged {
		e.Status = models.StatusApproved
		e.Processed = &models.Transition{
			ActorID:   in.Creator.ID,
			ActorName: in.Creator.Name,
			At:        now,
		}
		return e, true
	}
	return e, false
}

// Approve moves a pending expense to approved. Approving twice is an error,
// not a silent no-op.
func Approve(e models.Expense, approver models.Actor, now time.Time) (models.Expense, bool, error) {
	if e.Status != models.StatusPending {
		return e, false, ErrAlreadyProcessed
	}
	e.Status = models.StatusApproved
	e.Processed = &models.Transition{ActorID: approver.ID, ActorName: approver.Name, At: now}
	e.UpdatedAt = now
	return e, true, nil
}

// Reject moves a pending expense to rejected. The reason is mandatory.
// Rejected expenses never count toward the project total, so no recompute
// is signaled.
func Reject(e models.Expense, rejecter models.Actor, reason string, now time.Time) (models.Expense, error) {
	if e.Status != models.StatusPending {
		return e, ErrAlreadyProcessed
	}
	if strings.TrimSpace(reason) == "" {
		return e, ErrEmptyReason
	}
	e.Status = models.StatusRejected
	e.RejectionReason = reason
	e.Processed = &models.Transition{ActorID: rejecter.ID, ActorName: rejecter.Name, At: now}
	e.UpdatedAt = now
	return e, nil
}

// RecordPayment applies a payment against the expense. PaidAmount never
// leaves [0, Amount] and the payment status follows from the new balance.
// Payment tracking is orthogonal to the approve/reject lifecycle.
func RecordPayment(e models.Expense, payment decimal.Decimal, now time.Time) models.Expense {
	e.PaidAmount = clamp(e.PaidAmount.Add(payment), e.Amount)
	if e.PaidAmount.GreaterThanOrEqual(e.Amount) {
		e.PaymentStatus = models.PaymentStatusPaid
	} else {
		e.PaymentStatus = models.PaymentStatusPartial
	}
	e.UpdatedAt = now
	return e
}

// SoftDelete marks the expense deleted without touching its approval status.
// A recompute is only needed when an approved expense leaves the aggregate.
// When a delegated (non-admin) member deletes, the project admin must be
// told, so the effects carry a notice.
func SoftDelete(e models.Expense, deleter models.Actor, deleterIsDelegated bool, now time.Time) (models.Expense, Effects, error) {
	if e.IsDeleted {
		return e, Effects{}, ErrAlreadyDeleted
	}
	e.IsDeleted = true
	e.DeletedBy = deleter.ID
	e.DeletedAt = &now
	e.UpdatedAt = now

	eff := Effects{RecomputeTotal: e.Status == models.StatusApproved}
	if deleterIsDelegated {
		eff.Notice = &AdminNotice{
			DeleterName:  deleter.Name,
			ExpenseTitle: e.Title,
			ProjectID:    e.ProjectID,
		}
	}
	return e, eff, nil
}

// Restore undoes a soft delete, clearing the deletion audit fields.
func Restore(e models.Expense, now time.Time) (models.Expense, bool, error) {
	if !e.IsDeleted {
		return e, false, ErrNotDeleted
	}
	e.IsDeleted = false
	e.DeletedBy = ""
	e.DeletedAt = nil
	e.UpdatedAt = now
	return e, e.Status == models.StatusApproved, nil
}

// clamp bounds v to [0, max].
func clamp(v, max decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	if v.GreaterThan(max) {
		return max
	}
	return v
}
