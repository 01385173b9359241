package models

// User is the identity carried by a session. It comes from the OAuth provider
// and is never persisted by this service.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Image   string `json:"image,omitempty"`
	IsAdmin bool   `json:"isAdmin"`
}
