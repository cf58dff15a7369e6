package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/identitylab/account-service/internal/core/domain"
)

const defaultVerificationTTL = 24 * time.Hour

// VerificationStore issues one-shot email-verification tokens backed by
// Redis. Key format: verify:<token> → user id. Tokens expire after the
// configured TTL and are deleted on first consumption, so a token can never
// be replayed.
type VerificationStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVerificationStore creates a VerificationStore wrapping the given Redis
// client. A non-positive TTL falls back to 24 hours.
func NewVerificationStore(client *redis.Client, ttl time.Duration) *VerificationStore {
	if ttl <= 0 {
		ttl = defaultVerificationTTL
	}
	return &VerificationStore{client: client, ttl: ttl}
}

// Issue creates a fresh random token for the user and stores it with the TTL.
func (s *VerificationStore) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate verification token: %w", err)
	}
	token := hex.EncodeToString(b)

	if err := s.client.Set(ctx, s.key(token), userID.String(), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store verification token: %w", err)
	}
	return token, nil
}

// Consume atomically fetches and deletes the token, returning the user it was
// issued for. Unknown or expired tokens surface as domain.ErrInvalidToken.
func (s *VerificationStore) Consume(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := s.client.GetDel(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, domain.ErrInvalidToken
		}
		return uuid.Nil, fmt.Errorf("consume verification token: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidToken
	}
	return userID, nil
}

func (s *VerificationStore) key(token string) string {
	return "verify:" + token
}
