package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/identitylab/account-service/internal/core/domain"
	"github.com/identitylab/account-service/internal/core/ports"
)

// stubUserRepo is an in-memory UserRepository with uniqueness enforcement and
// failure injection.
type stubUserRepo struct {
	users     map[uuid.UUID]*domain.User
	findErr   error
	updateErr error
	updates   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Nickname == user.Nickname {
			return domain.ErrUserExists
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByNickname(_ context.Context, nickname string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Nickname == nickname {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, existing := range r.users {
		if id == user.ID {
			continue
		}
		if existing.Email == user.Email || existing.Nickname == user.Nickname {
			return domain.ErrUserExists
		}
	}
	r.users[user.ID] = cloneUser(user)
	r.updates++
	return nil
}

func (r *stubUserRepo) List(_ context.Context, in ports.ListUsersInput) ([]*domain.User, int64, error) {
	all := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, cloneUser(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	start := (in.Page - 1) * in.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + in.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(r.users)), nil
}

// stubHasher avoids bcrypt cost in tests; the hash is reversible on purpose.
type stubHasher struct{}

func (stubHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (stubHasher) Verify(plaintext, hash string) bool    { return hash == "hashed:"+plaintext }

// stubVerificationStore is an in-memory one-shot token store.
type stubVerificationStore struct {
	tokens map[string]uuid.UUID
	next   int
}

func newStubVerificationStore() *stubVerificationStore {
	return &stubVerificationStore{tokens: make(map[string]uuid.UUID)}
}

func (s *stubVerificationStore) Issue(_ context.Context, userID uuid.UUID) (string, error) {
	s.next++
	token := "vtok-" + uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(s.next)}).String()
	s.tokens[token] = userID
	return token, nil
}

func (s *stubVerificationStore) Consume(_ context.Context, token string) (uuid.UUID, error) {
	id, ok := s.tokens[token]
	if !ok {
		return uuid.Nil, domain.ErrInvalidToken
	}
	delete(s.tokens, token)
	return id, nil
}

// stubPublisher records published events.
type stubPublisher struct {
	mu     sync.Mutex
	events []domain.AccountEvent
}

func (p *stubPublisher) Publish(event domain.AccountEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *stubPublisher) kinds() []domain.AccountEventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	kinds := make([]domain.AccountEventKind, 0, len(p.events))
	for _, e := range p.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// testClock is a manually advanced clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{now: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
