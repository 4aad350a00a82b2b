package domain

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole converts a raw string into a Role.
func ParseRole(raw string) (Role, bool) {
	role := Role(raw)
	return role, role.Valid()
}

// User is a storefront customer or administrator account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
