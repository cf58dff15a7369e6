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

// UserService owns the mutation surface of the user record: partial profile
// updates and account state transitions. Every accepted mutation refreshes
// updated_at before the record is handed to the store.
type UserService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	events ports.EventPublisher
	clock  ports.Clock
	log    zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	events ports.EventPublisher,
	clock ports.Clock,
	log zerolog.Logger,
) *UserService {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &UserService{users: users, hasher: hasher, events: events, clock: clock, log: log}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, in ports.ListUsersInput) ([]*domain.User, int64, error) {
	return s.users.List(ctx, in)
}

// ApplyUpdate applies a partial changeset to a user record. The changeset is
// validated as a whole before any field is written: one invalid field rejects
// everything, so the record is never partially updated. An empty changeset is
// itself a validation error.
func (s *UserService) ApplyUpdate(ctx context.Context, id uuid.UUID, in ports.UpdateUserInput) (*domain.User, error) {
	if in.Empty() {
		metrics.ProfileUpdatesTotal.WithLabelValues("rejected").Inc()
		return nil, domain.NewValidationError("", "at least one field must be provided for update")
	}

	if err := validateChangeset(in); err != nil {
		metrics.ProfileUpdatesTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Nickname != nil {
		user.Nickname = *in.Nickname
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.Location != nil {
		user.Location = *in.Location
	}
	if in.ProfilePictureURL != nil {
		user.ProfilePictureURL = *in.ProfilePictureURL
	}
	if in.LinkedInProfileURL != nil {
		user.LinkedInProfileURL = *in.LinkedInProfileURL
	}
	if in.GitHubProfileURL != nil {
		user.GitHubProfileURL = *in.GitHubProfileURL
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		user.HashedPassword = hash
	}

	now := s.clock()
	if in.IsProfessional != nil {
		user.SetProfessionalStatus(*in.IsProfessional, now)
	}
	user.Touch(now)

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.ProfileUpdatesTotal.WithLabelValues("conflict").Inc()
		}
		return nil, err
	}

	metrics.ProfileUpdatesTotal.WithLabelValues("applied").Inc()
	s.log.Info().Str("user_id", user.ID.String()).Msg("profile updated")
	return user, nil
}

// validateChangeset checks every present field against the domain invariants
// without touching the record.
func validateChangeset(in ports.UpdateUserInput) error {
	if in.Email != nil {
		if err := domain.ValidateEmail(*in.Email); err != nil {
			return err
		}
	}
	if in.Nickname != nil {
		if err := domain.ValidateNickname(*in.Nickname); err != nil {
			return err
		}
	}
	if in.ProfilePictureURL != nil {
		if err := domain.ValidateProfileURL("profile_picture_url", *in.ProfilePictureURL); err != nil {
			return err
		}
	}
	if in.LinkedInProfileURL != nil {
		if err := domain.ValidateProfileURL("linkedin_profile_url", *in.LinkedInProfileURL); err != nil {
			return err
		}
	}
	if in.GitHubProfileURL != nil {
		if err := domain.ValidateProfileURL("github_profile_url", *in.GitHubProfileURL); err != nil {
			return err
		}
	}
	if in.Password != nil {
		if err := domain.ValidatePassword(*in.Password); err != nil {
			return err
		}
	}
	return nil
}

// ChangeRole assigns a new role to the account. The role is validated at this
// boundary; downstream code never re-parses it.
func (s *UserService) ChangeRole(ctx context.Context, id uuid.UUID, role domain.UserRole) (*domain.User, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	user.Role = role
	user.Touch(now)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID.String()).Str("role", string(role)).Msg("role changed")
	s.events.Publish(domain.AccountEvent{
		UserID:     user.ID,
		Email:      user.Email,
		Kind:       domain.EventRoleChanged,
		OccurredAt: now,
	})
	return user, nil
}

// LockAccount locks the account. Idempotent: locking a locked account is a
// no-op that still succeeds.
func (s *UserService) LockAccount(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.transition(ctx, id, domain.EventAccountLocked, func(u *domain.User) bool {
		already := u.IsLocked
		u.LockAccount()
		return !already
	})
}

// UnlockAccount unlocks the account and resets the failed-login counter.
// Idempotent.
func (s *UserService) UnlockAccount(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.transition(ctx, id, domain.EventAccountUnlocked, func(u *domain.User) bool {
		already := !u.IsLocked
		u.UnlockAccount()
		return !already
	})
}

// VerifyEmail marks the account's email verified without a token; this is the
// administrative path. Idempotent.
func (s *UserService) VerifyEmail(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.transition(ctx, id, domain.EventEmailVerified, func(u *domain.User) bool {
		already := u.EmailVerified
		u.VerifyEmail()
		return !already
	})
}

// SetProfessionalStatus toggles the professional flag. The status timestamp
// moves only when the value actually changes.
func (s *UserService) SetProfessionalStatus(ctx context.Context, id uuid.UUID, status bool) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	changed := user.SetProfessionalStatus(status, now)
	user.Touch(now)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if changed {
		s.log.Info().Str("user_id", user.ID.String()).Bool("is_professional", status).Msg("professional status changed")
	}
	return user, nil
}

// transition runs a boolean state flip, persists it, and publishes an event
// only when the state actually changed.
func (s *UserService) transition(ctx context.Context, id uuid.UUID, kind domain.AccountEventKind, flip func(*domain.User) bool) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	changed := flip(user)
	user.Touch(now)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if changed {
		s.events.Publish(domain.AccountEvent{
			UserID:     user.ID,
			Email:      user.Email,
			Kind:       kind,
			OccurredAt: now,
		})
	}
	return user, nil
}
