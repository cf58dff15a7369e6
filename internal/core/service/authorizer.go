package service

import "github.com/identitylab/account-service/internal/core/domain"

// Authorize accepts a resolved identity against a required role set. Nil when
// the user's stored role is a member of required; domain.ErrForbidden
// otherwise. Pure function, no side effects, safe on any goroutine.
//
// Forbidden is distinct from unauthenticated: the identity is recognized but
// under-privileged. Callers must not report which roles were required.
func Authorize(user *domain.User, required ...domain.UserRole) error {
	for _, role := range required {
		if user.Role == role {
			return nil
		}
	}
	return domain.ErrForbidden
}
