package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/identitylab/account-service/internal/core/domain"
	"github.com/identitylab/account-service/internal/core/ports"
)

// TokenCodec signs and verifies HS256 bearer tokens. The signing secret is
// injected at construction and never exposed or logged. The codec holds no
// mutable state; Issue and Decode are safe for concurrent use.
type TokenCodec struct {
	secret []byte
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

// Issue signs a token carrying the subject id and role claim. Expiry is
// embedded here but enforced at decode time.
func (c *TokenCodec) Issue(userID uuid.UUID, role domain.UserRole, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Decode parses and verifies a token string. Every failure mode — malformed
// structure, wrong algorithm, bad signature, expired timestamp, missing or
// unparseable claims — collapses into domain.ErrInvalidToken so callers never
// learn why a token was rejected.
func (c *TokenCodec) Decode(token string) (*ports.TokenClaims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, domain.ErrInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	roleStr, _ := claims["role"].(string)
	role, err := domain.ParseRole(roleStr)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, domain.ErrInvalidToken
	}

	return &ports.TokenClaims{
		UserID:    userID,
		Role:      role,
		ExpiresAt: exp.Time,
	}, nil
}
