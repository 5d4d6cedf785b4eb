package migrations

import "database/sql"

// AddDeviceTokens adds the encrypted FCM registration token column to users.
func AddDeviceTokens(db *sql.DB) error {
	present, err := hasColumn(db, "users", "device_token")
	if err != nil {
		return err
	}
	if present {
		return nil
	}
	_, err = db.Exec("ALTER TABLE users ADD COLUMN device_token TEXT")
	return err
}
