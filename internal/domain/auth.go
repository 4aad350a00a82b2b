package domain

// Identity is the verified payload of a session token.
// It lives for a single request and is never persisted.
type Identity struct {
	SubjectID string
	Email     string
	Role      Role
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// IdentityOf builds the token claims for a stored user.
func IdentityOf(u *User) Identity {
	return Identity{SubjectID: u.ID, Email: u.Email, Role: u.Role}
}
