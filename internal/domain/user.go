package domain

import "github.com/google/uuid"

// Role represents a user's role. The set is closed: tokens carrying
// anything else are rejected at the auth boundary.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleParticipant Role = "participant"
)

// ParseRole validates and converts a raw role claim
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleParticipant:
		return RoleParticipant, nil
	}
	return "", ErrInvalidRole
}

// Principal is the authenticated caller extracted from the JWT
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the principal has the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// User holds display data owned by the identity service.
// This service only ever reads it.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
}
