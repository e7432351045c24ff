package domain

import "time"

// Role is the authorization role attached to a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered account of the system.
type User struct {
	ID           int64
	Firstname    string
	Lastname     string
	Email        string
	Photo        string
	PasswordHash string
	Role         Role
	Active       bool

	// PasswordChangedAt is nil until the first password change or reset.
	PasswordChangedAt *time.Time

	// ResetTokenHash and ResetTokenExpiresAt are set together while a
	// password reset is pending and cleared together otherwise.
	ResetTokenHash      string
	ResetTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PasswordChangedAfter reports whether the password was changed after the
// given instant. Bearer tokens issued before a password change are stale.
func (u *User) PasswordChangedAfter(t time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.After(t)
}

// UserSummary carries the author display fields joined into post and
// feedback reads.
type UserSummary struct {
	ID        int64
	Firstname string
	Lastname  string
	Photo     string
}
