package services

import (
	"database/sql"
	"fmt"

	"buildledger/backend/database"
	"buildledger/backend/models"
	"buildledger/backend/security"
)

// SyncUser upserts a user record from the verified Firebase identity. The
// mobile app calls this after sign in so display names and the verified
// flag stay current.
func SyncUser(u models.User) error {
	_, err := database.DB.Exec(`
		INSERT INTO users (id, username, name, email, email_verified)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			name = excluded.name,
			email = excluded.email,
			email_verified = excluded.email_verified
	`, u.ID, u.Username, u.Name, u.Email, u.EmailVerified)
	if err != nil {
		return fmt.Errorf("failed to sync user: %w", err)
	}
	return nil
}

// GetUser loads a user by id.
func GetUser(id string) (*models.User, error) {
	var u models.User
	var email, deviceToken sql.NullString
	err := database.DB.QueryRow(`
		SELECT id, username, name, email, email_verified, device_token
		FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Username, &u.Name, &email, &u.EmailVerified, &deviceToken)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if email.Valid {
		u.Email = email.String
	}
	if deviceToken.Valid {
		u.DeviceToken = deviceToken.String
	}
	return &u, nil
}

// SetDeviceToken stores the user's FCM registration token, encrypted at
// rest.
func SetDeviceToken(userID, token string) error {
	encrypted, err := security.Encrypt(token)
	if err != nil {
		return fmt.Errorf("failed to encrypt device token: %w", err)
	}
	res, err := database.DB.Exec("UPDATE users SET device_token = ? WHERE id = ?", encrypted, userID)
	if err != nil {
		return fmt.Errorf("failed to store device token: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetDeviceToken returns the decrypted FCM token for a user, or ErrNotFound
// when the user never registered a device.
func GetDeviceToken(userID string) (string, error) {
	var encrypted sql.NullString
	err := database.DB.QueryRow("SELECT device_token FROM users WHERE id = ?", userID).Scan(&encrypted)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to query device token: %w", err)
	}
	if !encrypted.Valid || encrypted.String == "" {
		return "", ErrNotFound
	}
	return security.Decrypt(encrypted.String)
}
