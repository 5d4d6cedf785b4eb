package services

import (
	"database/sql"
	"fmt"

	"buildledger/backend/database"
	"buildledger/backend/models"
)

// RoleHierarchy defines project role ranks. Higher numbers hold more
// permissions.
var RoleHierarchy = map[string]int{
	models.RoleLabour:   1,
	models.RoleDirector: 2,
	models.RoleAdmin:    3,
}

// IsRoleAtLeast checks if a role is at least at the specified level.
func IsRoleAtLeast(role, requiredRole string) bool {
	level, ok := RoleHierarchy[role]
	requiredLevel, requiredOK := RoleHierarchy[requiredRole]
	if !ok || !requiredOK {
		return role == requiredRole
	}
	return level >= requiredLevel
}

// GetMember loads a user's membership in a project.
func GetMember(projectID, userID string) (*models.ProjectMember, error) {
	var m models.ProjectMember
	err := database.DB.QueryRow(`
		SELECT project_id, user_id, name, role, can_delete_expenses, can_delete_members, added_at
		FROM project_members
		WHERE project_id = ? AND user_id = ?
	`, projectID, userID).Scan(
		&m.ProjectID,
		&m.UserID,
		&m.Name,
		&m.Role,
		&m.Permissions.CanDeleteExpenses,
		&m.Permissions.CanDeleteMembers,
		&m.AddedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query project member: %w", err)
	}
	return &m, nil
}

// CanPerform is the single authorization gate consulted before any ledger
// operation. Admins can do everything on their project; directors hold a
// capability map for delete actions; labour can only submit expenses and
// read reports.
func CanPerform(userID, action, projectID string) (bool, error) {
	member, err := GetMember(projectID, userID)
	if err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return memberCan(member, action), nil
}

func memberCan(m *models.ProjectMember, action string) bool {
	if m.Role == models.RoleAdmin {
		return true
	}

	switch action {
	case models.ActionCreateExpense, models.ActionViewReports:
		return true
	case models.ActionRecordPayment:
		return m.Role == models.RoleDirector
	case models.ActionDeleteExpense:
		return m.Role == models.RoleDirector && m.Permissions.CanDeleteExpenses
	case models.ActionRemoveMember:
		return m.Role == models.RoleDirector && m.Permissions.CanDeleteMembers
	default:
		// approve/reject/restore, project edits and invitations stay with
		// the admin.
		return false
	}
}

// IsProjectAdmin reports whether the user holds the admin role on the
// project.
func IsProjectAdmin(projectID, userID string) (bool, error) {
	member, err := GetMember(projectID, userID)
	if err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return member.Role == models.RoleAdmin, nil
}

// ProjectAdminID returns the user id of the project's admin, for delegated
// deletion notifications.
func ProjectAdminID(projectID string) (string, error) {
	var adminID string
	err := database.DB.QueryRow(`
		SELECT user_id FROM project_members
		WHERE project_id = ? AND role = ?
		ORDER BY added_at ASC LIMIT 1
	`, projectID, models.RoleAdmin).Scan(&adminID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to query project admin: %w", err)
	}
	return adminID, nil
}
