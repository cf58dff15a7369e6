package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/identitylab/account-service/internal/core/domain"
	"github.com/identitylab/account-service/internal/core/ports"
)

type authFixture struct {
	repo         *stubUserRepo
	verification *stubVerificationStore
	events       *stubPublisher
	clock        *testClock
	svc          *AuthService
}

func newAuthFixture() *authFixture {
	repo := newStubUserRepo()
	verification := newStubVerificationStore()
	events := &stubPublisher{}
	clock := newTestClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := NewAuthService(
		repo, stubHasher{}, NewTokenCodec("secret"), verification, events,
		clock.Now, time.Hour, 3, zerolog.Nop(),
	)
	return &authFixture{repo: repo, verification: verification, events: events, clock: clock, svc: svc}
}

func (f *authFixture) register(t *testing.T, email, nickname, password string) *domain.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email:    email,
		Nickname: nickname,
		Password: password,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	return user
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture()

	user := f.register(t, "alice@example.com", "alice", "supersecret")

	if user.Role != domain.RoleAnonymous {
		t.Fatalf("expected new accounts to start as ANONYMOUS, got %s", user.Role)
	}
	if user.HashedPassword == "supersecret" {
		t.Fatalf("expected password to be hashed")
	}
	if !user.CreatedAt.Equal(f.clock.Now()) || !user.UpdatedAt.Equal(f.clock.Now()) {
		t.Fatalf("timestamps not taken from injected clock")
	}
	if len(f.events.events) != 1 || f.events.events[0].Kind != domain.EventUserRegistered {
		t.Fatalf("expected one user_registered event, got %+v", f.events.kinds())
	}
	if f.events.events[0].VerificationToken == "" {
		t.Fatalf("expected registration event to carry a verification token")
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture()

	cases := []struct {
		name  string
		input ports.RegisterInput
		field string
	}{
		{"bad email", ports.RegisterInput{Email: "not-an-email", Nickname: "alice", Password: "supersecret"}, "email"},
		{"short nickname", ports.RegisterInput{Email: "a@example.com", Nickname: "ab", Password: "supersecret"}, "nickname"},
		{"bad nickname chars", ports.RegisterInput{Email: "a@example.com", Nickname: "bad name!", Password: "supersecret"}, "nickname"},
		{"short password", ports.RegisterInput{Email: "a@example.com", Nickname: "alice", Password: "short"}, "password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tc.input)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, ve.Field)
			}
		})
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	f := newAuthFixture()

	f.register(t, "bob@example.com", "bob", "supersecret")
	_, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email:    "bob@example.com",
		Nickname: "bob2",
		Password: "supersecret",
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t, "carol@example.com", "carol", "supersecret")

	f.clock.Advance(time.Minute)
	result, err := f.svc.Login(context.Background(), "carol@example.com", "supersecret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected token, got empty")
	}
	if result.User.LastLoginAt == nil || !result.User.LastLoginAt.Equal(f.clock.Now()) {
		t.Fatalf("expected last_login_at to be set on successful login")
	}

	stored, _ := f.repo.FindByID(context.Background(), user.ID)
	if stored.LastLoginAt == nil {
		t.Fatalf("last_login_at not persisted")
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t, "dave@example.com", "dave", "supersecret")

	if _, err := f.svc.Login(context.Background(), "dave@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	stored, _ := f.repo.FindByID(context.Background(), user.ID)
	if stored.FailedLoginAttempts != 1 {
		t.Fatalf("expected failed-login counter 1, got %d", stored.FailedLoginAttempts)
	}
}

func TestAuthService_Login_LockoutAfterThreshold(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t, "eve@example.com", "eve", "supersecret")

	for i := 0; i < 3; i++ {
		_, _ = f.svc.Login(context.Background(), "eve@example.com", "wrong")
	}

	stored, _ := f.repo.FindByID(context.Background(), user.ID)
	if !stored.IsLocked {
		t.Fatalf("expected account locked after 3 failed logins")
	}

	// A locked account rejects even the correct password.
	if _, err := f.svc.Login(context.Background(), "eve@example.com", "supersecret"); !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}

	found := false
	for _, kind := range f.events.kinds() {
		if kind == domain.EventAccountLocked {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected account_locked event, got %v", f.events.kinds())
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	f := newAuthFixture()

	// Unknown email reads as bad credentials, not as a lookup miss.
	if _, err := f.svc.Login(context.Background(), "ghost@example.com", "supersecret"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_ResolveIdentity_Success(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t, "frank@example.com", "frank", "supersecret")

	result, err := f.svc.Login(context.Background(), "frank@example.com", "supersecret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	resolved, err := f.svc.ResolveIdentity(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("ResolveIdentity returned error: %v", err)
	}
	if resolved.ID != user.ID {
		t.Fatalf("resolved wrong user: %s", resolved.ID)
	}
}

func TestAuthService_ResolveIdentity_GarbageToken(t *testing.T) {
	f := newAuthFixture()

	if _, err := f.svc.ResolveIdentity(context.Background(), "not-a-token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_ResolveIdentity_UnknownSubject(t *testing.T) {
	f := newAuthFixture()

	codec := NewTokenCodec("secret")
	token, err := codec.Issue(uuid.New(), domain.RoleAuthenticated, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := f.svc.ResolveIdentity(context.Background(), token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for unknown subject, got %v", err)
	}
}

func TestAuthService_ResolveIdentity_StaleRoleClaim(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t, "grace@example.com", "grace", "supersecret")

	// Token claims MANAGER, but the store says ANONYMOUS. The stored role is
	// authoritative; the stale claim must not be trusted.
	codec := NewTokenCodec("secret")
	token, err := codec.Issue(user.ID, domain.RoleManager, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := f.svc.ResolveIdentity(context.Background(), token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected stale role claim to be unauthenticated, got %v", err)
	}
}

func TestAuthService_ResolveIdentity_LockedAccount(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t, "henry@example.com", "henry", "supersecret")

	result, err := f.svc.Login(context.Background(), "henry@example.com", "supersecret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	stored, _ := f.repo.FindByID(context.Background(), user.ID)
	stored.LockAccount()
	if err := f.repo.Update(context.Background(), stored); err != nil {
		t.Fatalf("lock user: %v", err)
	}

	if _, err := f.svc.ResolveIdentity(context.Background(), result.Token); !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
}

func TestAuthService_ResolveIdentity_StoreFailurePropagates(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t, "iris@example.com", "iris", "supersecret")

	codec := NewTokenCodec("secret")
	token, err := codec.Issue(user.ID, domain.RoleAnonymous, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	storeErr := errors.New("connection reset")
	f.repo.findErr = storeErr

	_, err = f.svc.ResolveIdentity(context.Background(), token)
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store failure to propagate, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("store failure must not be reported as unauthenticated")
	}
}

func TestAuthService_VerifyEmail_TokenFlow(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t, "judy@example.com", "judy", "supersecret")

	token := f.events.events[0].VerificationToken

	verified, err := f.svc.VerifyEmail(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyEmail returned error: %v", err)
	}
	if !verified.EmailVerified {
		t.Fatalf("expected email_verified after consuming token")
	}
	if verified.Role != domain.RoleAuthenticated {
		t.Fatalf("expected promotion to AUTHENTICATED, got %s", verified.Role)
	}
	if verified.ID != user.ID {
		t.Fatalf("verified wrong user")
	}

	// One-shot: a second consumption fails.
	if _, err := f.svc.VerifyEmail(context.Background(), token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected token replay to fail, got %v", err)
	}
}
