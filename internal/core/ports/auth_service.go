package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/identitylab/account-service/internal/core/domain"
)

// AuthService implements registration, login, and bearer-token identity
// resolution.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// ResolveIdentity maps a bearer token to the stored user record. The
	// token's role claim is informational only: it is cross-checked against
	// the persisted role and any mismatch is rejected as unauthenticated.
	ResolveIdentity(ctx context.Context, token string) (*domain.User, error)
	// VerifyEmail consumes a one-shot verification token issued at
	// registration and marks the referenced account verified.
	VerifyEmail(ctx context.Context, token string) (*domain.User, error)
}

// RegisterInput carries the data needed to create an account.
type RegisterInput struct {
	Email    string
	Nickname string
	Password string
}

// LoginResult bundles the issued token with the authenticated user.
type LoginResult struct {
	Token string
	User  *domain.User
}

// TokenCodec signs and verifies bearer tokens. Implementations hold the
// signing secret and no other state; Issue and Decode are pure functions of
// their input plus that secret.
type TokenCodec interface {
	Issue(userID uuid.UUID, role domain.UserRole, ttl time.Duration) (string, error)
	// Decode returns domain.ErrInvalidToken for malformed, tampered, or
	// expired tokens. It never panics across the boundary.
	Decode(token string) (*TokenClaims, error)
}

// TokenClaims is the validated content of a decoded bearer token.
type TokenClaims struct {
	UserID    uuid.UUID
	Role      domain.UserRole
	ExpiresAt time.Time
}

// VerificationStore issues and consumes one-shot email-verification tokens.
// Tokens expire server-side; Consume removes the token so it cannot be
// replayed. Unknown or expired tokens surface as domain.ErrInvalidToken.
type VerificationStore interface {
	Issue(ctx context.Context, userID uuid.UUID) (string, error)
	Consume(ctx context.Context, token string) (uuid.UUID, error)
}
