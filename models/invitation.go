package models

import "time"

// Invitation is a time-boxed, single-use token granting project membership.
type Invitation struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"projectId"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	Token         string    `json:"token"`
	Status        string    `json:"status"` // pending, accepted, cancelled
	InvitedBy     string    `json:"invitedBy"`
	InvitedByName string    `json:"invitedByName,omitempty"`
	AcceptedBy    string    `json:"acceptedBy,omitempty"`
	ExpiresAt     time.Time `json:"expiresAt"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
