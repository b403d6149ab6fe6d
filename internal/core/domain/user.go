package domain

import "time"

// User mirrors the persisted representation in the auth.users table.
// ResetToken and ResetTokenExpiresAt are populated only while a password
// reset flow is pending; both are cleared in the same write that updates
// the password hash.
type User struct {
	ID                  string
	Username            string
	Email               string
	PasswordHash        string
	CreatedAt           time.Time
	PasswordChangedAt   time.Time
	ResetToken          *string
	ResetTokenExpiresAt *time.Time
}

// HasPendingReset reports whether a reset token is live at the given instant.
func (u User) HasPendingReset(at time.Time) bool {
	if u.ResetToken == nil || u.ResetTokenExpiresAt == nil {
		return false
	}
	return u.ResetTokenExpiresAt.After(at)
}

// Sanitized returns a copy safe to expose outside the service layer.
func (u User) Sanitized() User {
	clean := u
	clean.PasswordHash = ""
	clean.ResetToken = nil
	clean.ResetTokenExpiresAt = nil
	return clean
}
