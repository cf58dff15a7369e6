package domain

import (
	"time"

	"github.com/google/uuid"
)

// User models an account in the system. It is the single persisted identity
// entity; all mutations go through the service layer so that field invariants
// and timestamp bookkeeping hold before any write reaches the store.
type User struct {
	ID       uuid.UUID `json:"id"`
	Nickname string    `json:"nickname"`
	Email    string    `json:"email"`

	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Location  string `json:"location,omitempty"`

	ProfilePictureURL  string `json:"profile_picture_url,omitempty"`
	LinkedInProfileURL string `json:"linkedin_profile_url,omitempty"`
	GitHubProfileURL   string `json:"github_profile_url,omitempty"`

	HashedPassword string   `json:"-"`
	Role           UserRole `json:"role"`

	EmailVerified       bool   `json:"email_verified"`
	VerificationToken   string `json:"-"`
	FailedLoginAttempts int    `json:"-"`
	IsLocked            bool   `json:"is_locked"`

	IsProfessional              bool       `json:"is_professional"`
	ProfessionalStatusUpdatedAt *time.Time `json:"professional_status_updated_at,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// HasRole reports whether the user holds exactly the given role.
// Roles are a flat set; there is no hierarchy.
func (u *User) HasRole(role UserRole) bool {
	return u.Role == role
}

// LockAccount marks the account locked. Idempotent.
func (u *User) LockAccount() {
	u.IsLocked = true
}

// UnlockAccount clears the locked flag and resets the failed-login counter.
// Idempotent.
func (u *User) UnlockAccount() {
	u.IsLocked = false
	u.FailedLoginAttempts = 0
}

// VerifyEmail marks the email address verified. One-directional: there is no
// unverify. A freshly registered ANONYMOUS account is promoted to
// AUTHENTICATED on first verification.
func (u *User) VerifyEmail() {
	u.EmailVerified = true
	if u.Role == RoleAnonymous {
		u.Role = RoleAuthenticated
	}
}

// SetProfessionalStatus updates the professional flag and reports whether the
// value actually changed. The status timestamp is touched only on a real
// transition.
func (u *User) SetProfessionalStatus(status bool, now time.Time) bool {
	if u.IsProfessional == status {
		return false
	}
	u.IsProfessional = status
	u.ProfessionalStatusUpdatedAt = &now
	return true
}

// Touch refreshes UpdatedAt. The timestamp never moves backwards, so clock
// skew between callers cannot violate monotonicity.
func (u *User) Touch(now time.Time) {
	if now.After(u.UpdatedAt) {
		u.UpdatedAt = now
	}
}
