package models

import "time"

// Role values a user account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether r is one of the enumerated roles.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a user account in the system.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"` // Never expose this to the client
	Role          string    `json:"role"`
	OAuthProvider string    `json:"oauthProvider,omitempty"` // Empty for credential accounts
	CreatedAt     time.Time `json:"createdAt"`
}

// OAuthOnly reports whether the account has no local password and can only
// sign in through its OAuth provider.
func (u User) OAuthOnly() bool {
	return u.PasswordHash == "" && u.OAuthProvider != ""
}
