package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape for this service.
// Shift is carried for shift-scoped roles (nurse, midwife); it is selected
// at login and fixed for the life of the session. Authorization decisions
// belong to internal/rbac, not to token contents.
type Claims struct {
	jwt.RegisteredClaims

	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Shift     string    `json:"shift,omitempty"`
	TokenType TokenType `json:"token_type"`
}
