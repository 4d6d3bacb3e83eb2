package models

// Notification kinds.
const (
	NotificationWelcome       = "welcome"
	NotificationPasswordReset = "password_reset"
)

// Notification is a queued message for the mail worker.
type Notification struct {
	Kind string `json:"kind"`
	To   string `json:"to"`
	Name string `json:"name"`
	// Password is set only when the recipient must be told a generated password.
	Password string `json:"password,omitempty"`
}
