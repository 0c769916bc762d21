package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cinehub/apiserver/types"
)

// UserStore holds user accounts in memory.
//
// Accounts are kept in insertion order, which is what breaks leaderboard
// ties for equal point totals. Email uniqueness is enforced on insert,
// case-insensitively.
type UserStore struct {
	mu    sync.RWMutex
	users []types.User
}

func NewUserStore() *UserStore {
	return &UserStore{}
}

// Insert adds a new account. The caller supplies the id; JoinedAt is
// stamped by the store when the caller left it unset. Fails with
// ErrEmailTaken on an email collision and ErrValidation when id or
// email is missing.
func (s *UserStore) Insert(ctx context.Context, user types.User) (types.User, error) {
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" {
		return types.User{}, ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return types.User{}, ErrEmailTaken
		}
	}
	if user.JoinedAt.IsZero() {
		user.JoinedAt = time.Now()
	}
	s.users = append(s.users, user)
	return user, nil
}

// GetByID retrieves an account by id.
func (s *UserStore) GetByID(ctx context.Context, id string) (types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return types.User{}, ErrNotFound
}

// GetByEmail retrieves an account by email, case-insensitively.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return types.User{}, ErrNotFound
}

// Mutate applies fn to the stored record under the write lock and
// returns the updated copy. This is the single critical section for
// point awards: the point total, level title, and review counter can
// only change together.
func (s *UserStore) Mutate(ctx context.Context, id string, fn func(*types.User)) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == id {
			fn(&s.users[i])
			return s.users[i], nil
		}
	}
	return types.User{}, ErrNotFound
}

// List returns a snapshot of all accounts in insertion order.
func (s *UserStore) List(ctx context.Context) ([]types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.User, len(s.users))
	copy(out, s.users)
	return out, nil
}
