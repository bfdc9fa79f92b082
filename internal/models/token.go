package models

import "time"

// ResetTokenTTL is how long a password reset token stays usable.
const ResetTokenTTL = time.Hour

// PasswordResetToken is a single-use credential for the reset flow. It is
// deleted when consumed, so presence in the store implies it has not been
// used yet.
type PasswordResetToken struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the token is past its TTL at the given instant.
func (t PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
