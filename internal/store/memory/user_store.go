package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/astrofleet/skybook/internal/store"
)

// UserStore implements store.UserStore using in-memory storage.
type UserStore struct {
	mu sync.RWMutex

	users        map[string]*store.UserRecord // user_id -> record
	usersByEmail map[string]*store.UserRecord // lowercase email -> record
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users:        make(map[string]*store.UserRecord),
		usersByEmail: make(map[string]*store.UserRecord),
	}
}

func (s *UserStore) Create(ctx context.Context, rec *store.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(rec.User.Email)
	if _, exists := s.usersByEmail[email]; exists {
		return store.ErrUserExists
	}

	// Clone to avoid external modifications
	clone := *rec
	s.users[rec.User.ID] = &clone
	s.usersByEmail[email] = &clone

	return nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*store.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, store.ErrUserNotFound
	}

	clone := *rec
	return &clone, nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*store.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}

	clone := *rec
	return &clone, nil
}

func (s *UserStore) TouchSignIn(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	rec.User.LastSignInAt = at

	return nil
}
