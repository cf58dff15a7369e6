package domain

// UserRole is the closed set of roles an account can hold. Role checks are
// exact set membership; ADMIN does not implicitly satisfy MANAGER checks.
type UserRole string

const (
	RoleAnonymous     UserRole = "ANONYMOUS"
	RoleAuthenticated UserRole = "AUTHENTICATED"
	RoleManager       UserRole = "MANAGER"
	RoleAdmin         UserRole = "ADMIN"
)

// ParseRole converts an untrusted string into a UserRole. It is the single
// point where role strings cross into the domain; downstream code only ever
// sees validated values.
func ParseRole(s string) (UserRole, error) {
	switch r := UserRole(s); r {
	case RoleAnonymous, RoleAuthenticated, RoleManager, RoleAdmin:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

// Valid reports whether the role is one of the closed set.
func (r UserRole) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}
