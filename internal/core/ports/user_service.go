package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/identitylab/account-service/internal/core/domain"
)

// UserService exposes the invariant-preserving mutation surface of the user
// record: partial profile updates and account state transitions.
type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	List(ctx context.Context, in ListUsersInput) ([]*domain.User, int64, error)
	// ApplyUpdate validates every present field before applying any of them;
	// a single invalid field rejects the whole changeset.
	ApplyUpdate(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*domain.User, error)
	ChangeRole(ctx context.Context, id uuid.UUID, role domain.UserRole) (*domain.User, error)
	LockAccount(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UnlockAccount(ctx context.Context, id uuid.UUID) (*domain.User, error)
	VerifyEmail(ctx context.Context, id uuid.UUID) (*domain.User, error)
	SetProfessionalStatus(ctx context.Context, id uuid.UUID, status bool) (*domain.User, error)
}

// UpdateUserInput is a partial changeset for a user record. Nil fields are
// untouched; non-nil fields are validated and applied atomically.
type UpdateUserInput struct {
	Email              *string
	Nickname           *string
	FirstName          *string
	LastName           *string
	Bio                *string
	Location           *string
	ProfilePictureURL  *string
	LinkedInProfileURL *string
	GitHubProfileURL   *string
	Password           *string
	IsProfessional     *bool
}

// Empty reports whether the changeset carries no fields at all.
func (in UpdateUserInput) Empty() bool {
	return in.Email == nil &&
		in.Nickname == nil &&
		in.FirstName == nil &&
		in.LastName == nil &&
		in.Bio == nil &&
		in.Location == nil &&
		in.ProfilePictureURL == nil &&
		in.LinkedInProfileURL == nil &&
		in.GitHubProfileURL == nil &&
		in.Password == nil &&
		in.IsProfessional == nil
}
