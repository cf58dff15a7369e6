package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/identitylab/account-service/internal/core/domain"
)

// UserRepository defines the persistence contract for user accounts. The
// store is responsible for enforcing nickname/email uniqueness atomically;
// conflicts surface as domain.ErrUserExists. Missing records surface as
// domain.ErrUserNotFound. Any other error is a transient store failure and is
// propagated untouched.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByNickname(ctx context.Context, nickname string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context, in ListUsersInput) ([]*domain.User, int64, error)
}

// ListUsersInput carries pagination for admin user listings.
type ListUsersInput struct {
	Page  int
	Limit int
}
