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

// recomputeRetries bounds the optimistic-concurrency retry loop. Contention
// on a single project is rare; three attempts is plenty.
const recomputeRetries = 3

// CreateProject inserts a project and enrolls its creator as admin.
func CreateProject(creator models.Actor, name, description string, budget decimal.Decimal) (*models.Project, error) {
	now := time.Now()
	p := &models.Project{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Budget:      budget,
		TotalSpent:  decimal.Zero,
		CreatedBy:   creator.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO projects (id, name, description, budget, total_spent, version, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, '0', 0, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.Budget.String(), p.CreatedBy, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO project_members (project_id, user_id, name, role, added_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, creator.ID, creator.Name, models.RoleAdmin, now)
	if err != nil {
		return nil, fmt.Errorf("failed to enroll project admin: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit project: %w", err)
	}
	return p, nil
}

// GetProject loads a project by id.
func GetProject(id string) (*models.Project, error) {
	var p models.Project
	var description sql.NullString
	var budget, totalSpent string
	err := database.DB.QueryRow(`
		SELECT id, name, description, budget, total_spent, version, created_by, created_at, updated_at
		FROM projects WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &description, &budget, &totalSpent, &p.Version, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query project: %w", err)
	}
	if description.Valid {
		p.Description = description.String
	}
	if p.Budget, err = decimal.NewFromString(budget); err != nil {
		return nil, fmt.Errorf("corrupt budget on project %s: %w", id, err)
	}
	if p.TotalSpent, err = decimal.NewFromString(totalSpent); err != nil {
		return nil, fmt.Errorf("corrupt total_spent on project %s: %w", id, err)
	}
	return &p, nil
}

// ListProjectsForUser returns every project the user is a member of.
func ListProjectsForUser(userID string) ([]models.Project, error) {
	rows, err := database.DB.Query(`
		SELECT p.id, p.name, p.description, p.budget, p.total_spent, p.version, p.created_by, p.created_at, p.updated_at
		FROM projects p
		JOIN project_members m ON m.project_id = p.id
		WHERE m.user_id = ?
		ORDER BY p.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		var description sql.NullString
		var budget, totalSpent string
		if err := rows.Scan(&p.ID, &p.Name, &description, &budget, &totalSpent, &p.Version, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if description.Valid {
			p.Description = description.String
		}
		if p.Budget, err = decimal.NewFromString(budget); err != nil {
			return nil, fmt.Errorf("corrupt budget on project %s: %w", p.ID, err)
		}
		if p.TotalSpent, err = decimal.NewFromString(totalSpent); err != nil {
			return nil, fmt.Errorf("corrupt total_spent on project %s: %w", p.ID, err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpdateProject changes the mutable project fields (name, description,
// budget).
func UpdateProject(id, name, description string, budget decimal.Decimal) error {
	res, err := database.DB.Exec(`
		UPDATE projects SET name = ?, description = ?, budget = ?, updated_at = ?
		WHERE id = ?
	`, name, description, budget.String(), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecomputeTotalSpent re-derives the project's total from its expense set
// and writes it behind an optimistic concurrency token. Two clients racing
// through approvals on the same project cannot silently overwrite each
// other: the conditional UPDATE fails on a stale version and the loser
// re-reads and recomputes.
func RecomputeTotalSpent(projectID string) (decimal.Decimal, error) {
	for attempt := 0; attempt < recomputeRetries; attempt++ {
		var version int64
		err := database.DB.QueryRow("SELECT version FROM projects WHERE id = ?", projectID).Scan(&version)
		if err != nil {
			if err == sql.ErrNoRows {
				return decimal.Zero, ErrNotFound
			}
			return decimal.Zero, fmt.Errorf("failed to read project version: %w", err)
		}

		expenses, err := ListProjectExpenses(projectID, models.ExpenseFilter{IncludeDeleted: true})
		if err != nil {
			return decimal.Zero, err
		}
		total := ledger.RecomputeTotalSpent(expenses)

		res, err := database.DB.Exec(`
			UPDATE projects SET total_spent = ?, version = version + 1, updated_at = ?
			WHERE id = ? AND version = ?
		`, total.String(), time.Now(), projectID, version)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to write total_spent: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return decimal.Zero, err
		}
		if n == 1 {
			return total, nil
		}
		logging.Logger.Debugf("Recompute conflict on project %s (version %d), retrying", projectID, version)
	}
	return decimal.Zero, fmt.Errorf("recompute contention on project %s: gave up after %d attempts", projectID, recomputeRetries)
}

// ListMembers returns the project's member roster.
func ListMembers(projectID string) ([]models.ProjectMember, error) {
	rows, err := database.DB.Query(`
		SELECT project_id, user_id, name, role, can_delete_expenses, can_delete_members, added_at
		FROM project_members WHERE project_id = ? ORDER BY added_at ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []models.ProjectMember
	for rows.Next() {
		var m models.ProjectMember
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Name, &m.Role,
			&m.Permissions.CanDeleteExpenses, &m.Permissions.CanDeleteMembers, &m.AddedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// AddMember enrolls a user in a project with a role and, for directors, a
// capability map.
func AddMember(m models.ProjectMember) error {
	return addMember(database.DB, m)
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func addMember(db execer, m models.ProjectMember) error {
	if _, ok := RoleHierarchy[m.Role]; !ok {
		return fmt.Errorf("invalid role: %s", m.Role)
	}
	_, err := db.Exec(`
		INSERT INTO project_members (project_id, user_id, name, role, can_delete_expenses, can_delete_members, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, user_id) DO UPDATE SET
			role = excluded.role,
			can_delete_expenses = excluded.can_delete_expenses,
			can_delete_members = excluded.can_delete_members
	`, m.ProjectID, m.UserID, m.Name, m.Role, m.Permissions.CanDeleteExpenses, m.Permissions.CanDeleteMembers, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// RemoveMember drops a user from a project.
func RemoveMember(projectID, userID string) error {
	res, err := database.DB.Exec("DELETE FROM project_members WHERE project_id = ? AND user_id = ?", projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
