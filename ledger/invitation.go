package ledger

import (
	"time"

	"buildledger/backend/models"
)

// InvitationValidity is how long a project invitation stays usable.
const InvitationValidity = 7 * 24 * time.Hour

// InvitationValid reports whether an invitation can still be accepted at
// the given instant.
func InvitationValid(inv models.Invitation, now time.Time) bool {
	return inv.Status == models.InvitationPending && now.Before(inv.ExpiresAt)
}

// AcceptInvitation marks the invitation accepted by the given user.
// Validity is checked at the moment of acceptance, not cached from creation,
// so a token that expired while sitting in an inbox fails here.
func AcceptInvitation(inv models.Invitation, userID string, now time.Time) (models.Invitation, error) {
	if !InvitationValid(inv, now) {
		return inv, ErrInvitationExpired
	}
	inv.Status = models.InvitationAccepted
	inv.AcceptedBy = userID
	inv.UpdatedAt = now
	return inv, nil
}
