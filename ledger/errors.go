package ledger

import "errors"

// Expected business conditions. Callers branch on these with errors.Is and
// translate them to user-facing responses; infrastructure failures never
// surface through the ledger because it performs no I/O.
var (
	ErrAlreadyProcessed  = errors.New("expense has already been approved or rejected")
	ErrAlreadyDeleted    = errors.New("expense is already deleted")
	ErrNotDeleted        = errors.New("expense is not deleted")
	ErrEmptyReason       = errors.New("rejection reason is required")
	ErrInvitationExpired = errors.New("invitation is expired or no longer pending")
)
