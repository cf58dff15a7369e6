package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/identitylab/account-service/internal/api/metrics"
	"github.com/identitylab/account-service/internal/core/domain"
	"github.com/identitylab/account-service/internal/core/ports"
)

const (
	defaultTokenTTL        = 24 * time.Hour
	defaultMaxFailedLogins = 5
)

// AuthService implements registration, login, and bearer-token identity
// resolution over the user store.
type AuthService struct {
	users           ports.UserRepository
	hasher          ports.PasswordHasher
	codec           ports.TokenCodec
	verification    ports.VerificationStore
	events          ports.EventPublisher
	clock           ports.Clock
	tokenTTL        time.Duration
	maxFailedLogins int
	log             zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	codec ports.TokenCodec,
	verification ports.VerificationStore,
	events ports.EventPublisher,
	clock ports.Clock,
	tokenTTL time.Duration,
	maxFailedLogins int,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	if maxFailedLogins <= 0 {
		maxFailedLogins = defaultMaxFailedLogins
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &AuthService{
		users:           users,
		hasher:          hasher,
		codec:           codec,
		verification:    verification,
		events:          events,
		clock:           clock,
		tokenTTL:        tokenTTL,
		maxFailedLogins: maxFailedLogins,
		log:             log,
	}
}

// Register creates a new account. Accounts start as ANONYMOUS and are
// promoted to AUTHENTICATED once the email address is verified.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if err := domain.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := domain.ValidateNickname(in.Nickname); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	user := &domain.User{
		ID:             uuid.New(),
		Nickname:       in.Nickname,
		Email:          in.Email,
		HashedPassword: hash,
		Role:           domain.RoleAnonymous,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.verification.Issue(ctx, user.ID)
	if err != nil {
		// The account exists; verification can be re-requested later.
		s.log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to issue verification token")
	}

	metrics.RegistrationsTotal.Inc()
	s.log.Info().Str("user_id", user.ID.String()).Str("nickname", user.Nickname).Msg("user registered")

	s.events.Publish(domain.AccountEvent{
		UserID:            user.ID,
		Email:             user.Email,
		Kind:              domain.EventUserRegistered,
		VerificationToken: token,
		OccurredAt:        now,
	})

	return user, nil
}

// Login verifies credentials and issues a bearer token. Failed attempts
// increment the per-account counter; crossing the threshold locks the
// account. A successful login resets the counter and records last_login_at.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if email == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Unknown email reads as bad credentials to prevent enumeration.
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.IsLocked {
		metrics.LoginsTotal.WithLabelValues("locked").Inc()
		return nil, domain.ErrAccountLocked
	}

	now := s.clock()
	if !s.hasher.Verify(password, user.HashedPassword) {
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= s.maxFailedLogins {
			user.LockAccount()
			metrics.AccountLockoutsTotal.Inc()
			s.log.Warn().Str("user_id", user.ID.String()).Msg("account locked after repeated failed logins")
			s.events.Publish(domain.AccountEvent{
				UserID:     user.ID,
				Email:      user.Email,
				Kind:       domain.EventAccountLocked,
				OccurredAt: now,
			})
		}
		user.Touch(now)
		if updateErr := s.users.Update(ctx, user); updateErr != nil {
			s.log.Error().Err(updateErr).Str("user_id", user.ID.String()).Msg("failed to persist failed-login counter")
		}
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user.FailedLoginAttempts = 0
	user.LastLoginAt = &now
	user.Touch(now)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.codec.Issue(user.ID, user.Role, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return &ports.LoginResult{Token: token, User: user}, nil
}

// ResolveIdentity maps a bearer token to the stored user record. Read-only:
// resolution never mutates the record. The stored role is authoritative; a
// token whose role claim disagrees with the store is rejected as
// unauthenticated rather than trusted, so a stale or forged claim cannot
// escalate privileges.
func (s *AuthService) ResolveIdentity(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		// Transient store failures are not unauthenticated.
		return nil, err
	}

	if user.Role != claims.Role {
		s.log.Warn().Str("user_id", user.ID.String()).Msg("token role claim does not match stored role")
		return nil, domain.ErrInvalidToken
	}

	if user.IsLocked {
		return nil, domain.ErrAccountLocked
	}

	return user, nil
}

// VerifyEmail consumes a one-shot verification token and marks the referenced
// account verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.verification.Consume(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	user.VerifyEmail()
	user.Touch(now)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.events.Publish(domain.AccountEvent{
		UserID:     user.ID,
		Email:      user.Email,
		Kind:       domain.EventEmailVerified,
		OccurredAt: now,
	})

	return user, nil
}
