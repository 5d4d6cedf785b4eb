package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"buildledger/backend/database"
	"buildledger/backend/ledger"
	"buildledger/backend/logging"
	"buildledger/backend/models"
)

// CreateInvitation issues a time-boxed, single-use membership token and
// mails it to the invitee. The mail send is fire and forget; a delivery
// failure never loses the invitation.
func CreateInvitation(projectID, email, role string, invitedBy models.Actor) (*models.Invitation, error) {
	if _, ok := RoleHierarchy[role]; !ok {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	now := time.Now()
	inv := &models.Invitation{
		ID:            uuid.New().String(),
		ProjectID:     projectID,
		Email:         email,
		Role:          role,
		Token:         uuid.New().String(),
		Status:        models.InvitationPending,
		InvitedBy:     invitedBy.ID,
		InvitedByName: invitedBy.Name,
		ExpiresAt:     now.Add(ledger.InvitationValidity),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := database.DB.Exec(`
		INSERT INTO invitations (id, project_id, email, role, token, status, invited_by, invited_by_name, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.ProjectID, inv.Email, inv.Role, inv.Token, inv.Status,
		inv.InvitedBy, inv.InvitedByName, inv.ExpiresAt, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert invitation: %w", err)
	}

	go func() {
		project, err := GetProject(projectID)
		if err != nil {
			logging.Logger.Warnf("Skipping invitation mail, project lookup failed: %v", err)
			return
		}
		if err := SendInvitationEmail(inv.Email, project.Name, inv.Token, inv.InvitedByName); err != nil {
			logging.Logger.Warnf("Failed to send invitation mail to %s: %v", inv.Email, err)
		}
	}()

	return inv, nil
}

// GetInvitation loads an invitation by id.
func GetInvitation(id string) (*models.Invitation, error) {
	row := database.DB.QueryRow(invitationColumns+" FROM invitations WHERE id = ?", id)
	inv, err := scanInvitation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query invitation: %w", err)
	}
	return inv, nil
}

// GetInvitationByToken resolves an invitation token.
func GetInvitationByToken(token string) (*models.Invitation, error) {
	row := database.DB.QueryRow(invitationColumns+" FROM invitations WHERE token = ?", token)
	inv, err := scanInvitation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query invitation: %w", err)
	}
	return inv, nil
}

// AcceptInvitation validates the token at the moment of acceptance and, on
// success, enrolls the user in the project.
func AcceptInvitation(token string, user models.User) (*models.Invitation, error) {
	inv, err := GetInvitationByToken(token)
	if err != nil {
		return nil, err
	}

	accepted, err := ledger.AcceptInvitation(*inv, user.ID, time.Now())
	if err != nil {
		return nil, err
	}

	// Status flip and enrollment must land together; an accepted invitation
	// with no membership strands the user.
	tx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE invitations SET status = ?, accepted_by = ?, updated_at = ? WHERE id = ?
	`, accepted.Status, accepted.AcceptedBy, accepted.UpdatedAt, accepted.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update invitation: %w", err)
	}

	err = addMember(tx, models.ProjectMember{
		ProjectID: accepted.ProjectID,
		UserID:    user.ID,
		Name:      user.Name,
		Role:      accepted.Role,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit invitation acceptance: %w", err)
	}
	return &accepted, nil
}

// CancelInvitation withdraws a pending invitation.
func CancelInvitation(id string) error {
	res, err := database.DB.Exec(`
		UPDATE invitations SET status = ?, updated_at = ? WHERE id = ? AND status = ?
	`, models.InvitationCancelled, time.Now(), id, models.InvitationPending)
	if err != nil {
		return fmt.Errorf("failed to cancel invitation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListProjectInvitations returns a project's invitations, newest first.
func ListProjectInvitations(projectID string) ([]models.Invitation, error) {
	rows, err := database.DB.Query(invitationColumns+" FROM invitations WHERE project_id = ? ORDER BY created_at DESC", projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitations: %w", err)
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, *inv)
	}
	return invitations, rows.Err()
}

// ExpireInvitations cancels every pending invitation past its expiry.
// Validity is also checked at acceptance time, so the sweep is bookkeeping,
// not a correctness requirement.
func ExpireInvitations() (int64, error) {
	res, err := database.DB.Exec(`
		UPDATE invitations SET status = ?, updated_at = ?
		WHERE status = ? AND expires_at < ?
	`, models.InvitationCancelled, time.Now(), models.InvitationPending, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire invitations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logging.Logger.Infof("Expired %d stale invitations", n)
	}
	return n, nil
}

const invitationColumns = `SELECT id, project_id, email, role, token, status, invited_by, invited_by_name, accepted_by, expires_at, created_at, updated_at`

func scanInvitation(row rowScanner) (*models.Invitation, error) {
	var inv models.Invitation
	var invitedByName, acceptedBy sql.NullString
	err := row.Scan(&inv.ID, &inv.ProjectID, &inv.Email, &inv.Role, &inv.Token, &inv.Status,
		&inv.InvitedBy, &invitedByName, &acceptedBy, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.InvitedByName = invitedByName.String
	inv.AcceptedBy = acceptedBy.String
	return &inv, nil
}
