package ports

import (
	"context"
	"time"

	"github.com/identitylab/account-service/internal/core/domain"
)

// PasswordHasher hashes and verifies passwords. Plaintext never leaves the
// call stack; only the hash is persisted.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Clock supplies the current time. Injected so tests control timestamps.
type Clock func() time.Time

// EventPublisher hands account events to the asynchronous notification
// pipeline. Publishing must not block request handling beyond queue capacity.
type EventPublisher interface {
	Publish(event domain.AccountEvent)
}

// Notifier delivers a single account event to its recipient (email, webhook,
// or log depending on the implementation).
type Notifier interface {
	Send(ctx context.Context, event domain.AccountEvent) error
}
