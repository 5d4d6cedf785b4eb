package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Project struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Budget      decimal.Decimal `json:"budget"`
	// TotalSpent is a cached projection over approved, non-deleted expenses.
	// It is only ever written by a full recompute guarded by Version.
	TotalSpent decimal.Decimal `json:"totalSpent"`
	Version    int64           `json:"-"`
	CreatedBy  string          `json:"createdBy"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// RemainingBudget may be negative; running over budget is a representable
// state, not an error.
func (p Project) RemainingBudget() decimal.Decimal {
	return p.Budget.Sub(p.TotalSpent)
}

// DirectorPermissions is a capability map for director members. Admins hold
// every capability implicitly; labour holds none.
type DirectorPermissions struct {
	CanDeleteExpenses bool `json:"canDeleteExpenses"`
	CanDeleteMembers  bool `json:"canDeleteMembers"`
}

type ProjectMember struct {
	ProjectID   string              `json:"projectId"`
	UserID      string              `json:"userId"`
	Name        string              `json:"name"`
	Role        string              `json:"role"` // admin, director, labour
	Permissions DirectorPermissions `json:"permissions"`
	AddedAt     time.Time           `json:"addedAt"`
}
