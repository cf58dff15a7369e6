package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/identitylab/account-service/internal/core/domain"
)

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTokenCodec("secret")
	userID := uuid.New()

	token, err := codec.Issue(userID, domain.RoleManager, time.Hour)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected subject %s, got %s", userID, claims.UserID)
	}
	if claims.Role != domain.RoleManager {
		t.Fatalf("expected role MANAGER, got %s", claims.Role)
	}
	if !claims.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected expiry in the future, got %s", claims.ExpiresAt)
	}
}

func TestTokenCodec_Expired(t *testing.T) {
	codec := NewTokenCodec("secret")

	token, err := codec.Issue(uuid.New(), domain.RoleAdmin, -time.Minute)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := codec.Decode(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenCodec_Malformed(t *testing.T) {
	codec := NewTokenCodec("secret")

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := codec.Decode(token); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	issuer := NewTokenCodec("secret-a")
	verifier := NewTokenCodec("secret-b")

	token, err := issuer.Issue(uuid.New(), domain.RoleAuthenticated, time.Hour)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := verifier.Decode(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestTokenCodec_RejectsForeignClaims(t *testing.T) {
	codec := NewTokenCodec("secret")

	cases := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"missing subject", jwt.MapClaims{"role": "ADMIN", "exp": time.Now().Add(time.Hour).Unix()}},
		{"non-uuid subject", jwt.MapClaims{"sub": "42", "role": "ADMIN", "exp": time.Now().Add(time.Hour).Unix()}},
		{"missing role", jwt.MapClaims{"sub": uuid.NewString(), "exp": time.Now().Add(time.Hour).Unix()}},
		{"unknown role", jwt.MapClaims{"sub": uuid.NewString(), "role": "SUPERUSER", "exp": time.Now().Add(time.Hour).Unix()}},
		{"missing expiry", jwt.MapClaims{"sub": uuid.NewString(), "role": "ADMIN"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc.claims).SignedString([]byte("secret"))
			if err != nil {
				t.Fatalf("sign token: %v", err)
			}
			if _, err := codec.Decode(signed); !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenCodec_RejectsUnexpectedAlgorithm(t *testing.T) {
	codec := NewTokenCodec("secret")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  uuid.NewString(),
		"role": "ADMIN",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := codec.Decode(unsigned); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for alg=none, got %v", err)
	}
}
