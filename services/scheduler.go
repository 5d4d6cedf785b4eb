package services

import (
	"time"

	"buildledger/backend/logging"
)

// StartScheduler starts the background jobs.
func StartScheduler() {
	logging.Logger.Info("Starting task scheduler...")

	go startInvitationExpiryScheduler()
}

// startInvitationExpiryScheduler sweeps expired invitations daily at
// midnight.
func startInvitationExpiryScheduler() {
	for {
		now := time.Now()
		midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
		timeUntilMidnight := midnight.Sub(now)

		logging.Logger.Infof("Next invitation expiry sweep in %v", timeUntilMidnight)
		time.Sleep(timeUntilMidnight)

		logging.Logger.Info("Running scheduled invitation expiry sweep...")
		if _, err := ExpireInvitations(); err != nil {
			logging.Logger.Errorf("Invitation expiry sweep failed: %v", err)
		}

		// Small delay so a fast sweep cannot run twice in the same tick
		time.Sleep(time.Second)
	}
}
