package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"buildledger/backend/database"
	"buildledger/backend/ledger"
	"buildledger/backend/logging"
	"buildledger/backend/models"
)

// CreateExpense runs the ledger's creation rules and persists the result.
// Only project admins are privileged creators; directors submit as pending
// like everyone else.
func CreateExpense(in ledger.CreateInput) (*models.Expense, error) {
	member, err := GetMember(in.ProjectID, in.Creator.ID)
	if err != nil {
		return nil, err
	}
	if in.Creator.Name == "" {
		in.Creator.Name = member.Name
	}

	e, recompute := ledger.Create(in, member.Role == models.RoleAdmin, time.Now())
	e.ID = uuid.New().String()

	if err := insertExpense(e); err != nil {
		return nil, err
	}

	if recompute {
		if _, err := RecomputeTotalSpent(e.ProjectID); err != nil {
			return nil, err
		}
	}
	return &e, nil
}

// GetExpense loads an expense by id.
func GetExpense(id string) (*models.Expense, error) {
	row := database.DB.QueryRow(expenseColumns+" FROM expenses WHERE id = ?", id)
	e, err := scanExpense(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query expense: %w", err)
	}
	return e, nil
}

// ApproveExpense transitions a pending expense to approved and refreshes
// the project total.
func ApproveExpense(id string, approver models.Actor) (*models.Expense, error) {
	e, err := GetExpense(id)
	if err != nil {
		return nil, err
	}

	approved, recompute, err := ledger.Approve(*e, approver, time.Now())
	if err != nil {
		return nil, err
	}
	if err := updateExpense(approved); err != nil {
		return nil, err
	}
	if recompute {
		if _, err := RecomputeTotalSpent(approved.ProjectID); err != nil {
			return nil, err
		}
	}
	return &approved, nil
}

// RejectExpense transitions a pending expense to rejected. No recompute:
// rejected expenses never count toward the total.
func RejectExpense(id string, rejecter models.Actor, reason string) (*models.Expense, error) {
	e, err := GetExpense(id)
	if err != nil {
		return nil, err
	}

	rejected, err := ledger.Reject(*e, rejecter, reason, time.Now())
	if err != nil {
		return nil, err
	}
	if err := updateExpense(rejected); err != nil {
		return nil, err
	}
	return &rejected, nil
}

// RecordPayment applies a payment against an expense.
func RecordPayment(id string, payment decimal.Decimal) (*models.Expense, error) {
	e, err := GetExpense(id)
	if err != nil {
		return nil, err
	}

	updated := ledger.RecordPayment(*e, payment, time.Now())
	if err := updateExpense(updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateExpenseAmount edits the amount of an expense. Editing an approved
// expense changes the aggregate, so it triggers a recompute.
func UpdateExpenseAmount(id string, amount decimal.Decimal) (*models.Expense, error) {
	e, err := GetExpense(id)
	if err != nil {
		return nil, err
	}

	e.Amount = amount
	e.PaidAmount = decimal.Min(e.PaidAmount, amount)
	if e.PaidAmount.GreaterThanOrEqual(e.Amount) {
		e.PaymentStatus = models.PaymentStatusPaid
	} else if e.PaymentStatus == models.PaymentStatusPaid {
		// Raising the amount of a settled expense reopens the balance.
		e.PaymentStatus = models.PaymentStatusPartial
	}
	e.UpdatedAt = time.Now()
	if err := updateExpense(*e); err != nil {
		return nil, err
	}

	if e.Status == models.StatusApproved {
		if _, err := RecomputeTotalSpent(e.ProjectID); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// DeleteExpense soft-deletes an expense. When a delegated (non-admin)
// member deletes, the project admin is notified; the send is fire and
// forget.
func DeleteExpense(id string, deleter models.Actor) (*models.Expense, error) {
	e, err := GetExpense(id)
	if err != nil {
		return nil, err
	}

	member, err := GetMember(e.ProjectID, deleter.ID)
	if err != nil {
		return nil, err
	}
	if deleter.Name == "" {
		deleter.Name = member.Name
	}

	deleted, effects, err := ledger.SoftDelete(*e, deleter, member.Role != models.RoleAdmin, time.Now())
	if err != nil {
		return nil, err
	}
	if err := updateExpense(deleted); err != nil {
		return nil, err
	}

	if effects.RecomputeTotal {
		if _, err := RecomputeTotalSpent(deleted.ProjectID); err != nil {
			return nil, err
		}
	}
	if effects.Notice != nil {
		NotifyExpenseDeleted(*effects.Notice)
	}
	return &deleted, nil
}

// RestoreExpense undoes a soft delete.
func RestoreExpense(id string) (*models.Expense, error) {
	e, err := GetExpense(id)
	if err != nil {
		return nil, err
	}

	restored, recompute, err := ledger.Restore(*e, time.Now())
	if err != nil {
		return nil, err
	}
	if err := updateExpense(restored); err != nil {
		return nil, err
	}
	if recompute {
		if _, err := RecomputeTotalSpent(restored.ProjectID); err != nil {
			return nil, err
		}
	}
	return &restored, nil
}

// SetReceiptObject links an uploaded receipt image to its expense.
func SetReceiptObject(id, objectName string) error {
	res, err := database.DB.Exec("UPDATE expenses SET receipt_object = ?, updated_at = ? WHERE id = ?",
		objectName, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set receipt object: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListProjectExpenses returns a project's expenses, optionally narrowed by
// filter. Soft-deleted expenses are excluded from default listings.
func ListProjectExpenses(projectID string, filter models.ExpenseFilter) ([]models.Expense, error) {
	query := expenseColumns + " FROM expenses WHERE project_id = ?"
	args := []interface{}{projectID}

	if !filter.IncludeDeleted {
		query += " AND is_deleted = 0"
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.PaymentStatus != "" {
		query += " AND payment_status = ?"
		args = append(args, filter.PaymentStatus)
	}
	if filter.Year != nil {
		query += " AND strftime('%Y', expense_date) = ?"
		args = append(args, fmt.Sprintf("%04d", *filter.Year))
	}
	if filter.Month != nil {
		query += " AND strftime('%m', expense_date) = ?"
		args = append(args, fmt.Sprintf("%02d", *filter.Month))
	}
	query += " ORDER BY expense_date DESC"

	rows, err := database.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

const expenseColumns = `SELECT id, project_id, title, description, amount, category, payment_method,
	status, payment_status, paid_amount, expense_date, receipt_object,
	created_by, created_by_name, processed_by, processed_by_name, processed_at,
	rejection_reason, is_deleted, deleted_by, deleted_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	var e models.Expense
	var description, category, paymentMethod, receiptObject sql.NullString
	var createdByName, processedBy, processedByName, rejectionReason, deletedBy sql.NullString
	var processedAt, deletedAt sql.NullTime
	var amount, paidAmount string

	err := row.Scan(
		&e.ID, &e.ProjectID, &e.Title, &description, &amount, &category, &paymentMethod,
		&e.Status, &e.PaymentStatus, &paidAmount, &e.ExpenseDate, &receiptObject,
		&e.CreatedBy, &createdByName, &processedBy, &processedByName, &processedAt,
		&rejectionReason, &e.IsDeleted, &deletedBy, &deletedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("corrupt amount on expense %s: %w", e.ID, err)
	}
	if e.PaidAmount, err = decimal.NewFromString(paidAmount); err != nil {
		return nil, fmt.Errorf("corrupt paid_amount on expense %s: %w", e.ID, err)
	}

	e.Description = description.String
	e.Category = category.String
	e.PaymentMethod = paymentMethod.String
	e.ReceiptObject = receiptObject.String
	e.CreatedByName = createdByName.String
	e.RejectionReason = rejectionReason.String
	e.DeletedBy = deletedBy.String
	if deletedAt.Valid {
		t := deletedAt.Time
		e.DeletedAt = &t
	}
	if processedBy.Valid && processedBy.String != "" {
		e.Processed = &models.Transition{
			ActorID:   processedBy.String,
			ActorName: processedByName.String,
		}
		if processedAt.Valid {
			e.Processed.At = processedAt.Time
		}
	}
	return &e, nil
}

func insertExpense(e models.Expense) error {
	_, err := database.DB.Exec(`
		INSERT INTO expenses (id, project_id, title, description, amount, category, payment_method,
			status, payment_status, paid_amount, expense_date, receipt_object,
			created_by, created_by_name, processed_by, processed_by_name, processed_at,
			rejection_reason, is_deleted, deleted_by, deleted_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.ProjectID, e.Title, e.Description, e.Amount.String(), e.Category, e.PaymentMethod,
		e.Status, e.PaymentStatus, e.PaidAmount.String(), e.ExpenseDate, nullable(e.ReceiptObject),
		e.CreatedBy, e.CreatedByName, transitionActor(e.Processed), transitionActorName(e.Processed), transitionAt(e.Processed),
		nullable(e.RejectionReason), e.IsDeleted, nullable(e.DeletedBy), e.DeletedAt, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

func updateExpense(e models.Expense) error {
	res, err := database.DB.Exec(`
		UPDATE expenses SET title = ?, description = ?, amount = ?, category = ?, payment_method = ?,
			status = ?, payment_status = ?, paid_amount = ?, expense_date = ?, receipt_object = ?,
			processed_by = ?, processed_by_name = ?, processed_at = ?,
			rejection_reason = ?, is_deleted = ?, deleted_by = ?, deleted_at = ?, updated_at = ?
		WHERE id = ?
	`, e.Title, e.Description, e.Amount.String(), e.Category, e.PaymentMethod,
		e.Status, e.PaymentStatus, e.PaidAmount.String(), e.ExpenseDate, nullable(e.ReceiptObject),
		transitionActor(e.Processed), transitionActorName(e.Processed), transitionAt(e.Processed),
		nullable(e.RejectionReason), e.IsDeleted, nullable(e.DeletedBy), e.DeletedAt, e.UpdatedAt, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func transitionActor(t *models.Transition) interface{} {
	if t == nil {
		return nil
	}
	return t.ActorID
}

func transitionActorName(t *models.Transition) interface{} {
	if t == nil {
		return nil
	}
	return t.ActorName
}

func transitionAt(t *models.Transition) interface{} {
	if t == nil {
		return nil
	}
	return t.At
}

// LogExpenseAudit writes a structured line for every state transition. The
// mobile app relies on server logs for dispute investigations.
func LogExpenseAudit(action string, e *models.Expense, actor models.Actor) {
	logging.Logger.WithFields(map[string]interface{}{
		"action":    action,
		"expenseId": e.ID,
		"projectId": e.ProjectID,
		"status":    e.Status,
		"actorId":   actor.ID,
	}).Info("expense state changed")
}
