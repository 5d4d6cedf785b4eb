package models

// Expense approval lifecycle
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Payment tracking, independent of the approval lifecycle
const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPartial = "partial"
	PaymentStatusCredit  = "credit"
)

// Project member roles
const (
	RoleAdmin    = "admin"
	RoleDirector = "director"
	RoleLabour   = "labour"
)

// Invitation lifecycle
const (
	InvitationPending   = "pending"
	InvitationAccepted  = "accepted"
	InvitationCancelled = "cancelled"
)

// Actions checked through services.CanPerform
const (
	ActionCreateExpense  = "create_expense"
	ActionApproveExpense = "approve_expense"
	ActionRecordPayment  = "record_payment"
	ActionDeleteExpense  = "delete_expense"
	ActionRestoreExpense = "restore_expense"
	ActionEditProject    = "edit_project"
	ActionInviteMember   = "invite_member"
	ActionRemoveMember   = "remove_member"
	ActionViewReports    = "view_reports"
)
