package users

import "time"

// User is a staff account. Accounts are deactivated, never deleted, so audit
// events can always resolve their actor.
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"full_name" db:"full_name"`
	Role         string    `json:"role" db:"role"`
	// Shift is set for shift-scoped roles (nurse, midwife) and empty for
	// all others. It is the default offered at login; the shift actually
	// chosen at login wins for that session.
	Shift     string    `json:"shift,omitempty" db:"shift"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
