package models

type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
	// DeviceToken is the FCM registration token, stored encrypted.
	// Never serialized back to clients.
	DeviceToken string `json:"-"`
}
