// Package memory provides an in-process implementation of storage.Store.
// Data lives only as long as the process; it backs tests and local runs
// started with DB_DRIVER=memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/authd/internal/models"
	"github.com/mmynk/authd/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps users in maps guarded by a RWMutex.
type Store struct {
	mu          sync.RWMutex
	users       map[string]models.User
	byEmail     map[string]string
	byFederated map[string]string
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:       make(map[string]models.User),
		byEmail:     make(map[string]string),
		byFederated: make(map[string]string),
	}
}

// CreateUser inserts the user, enforcing email and federated ID uniqueness.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return storage.ErrDuplicate
	}
	if user.FederatedID != "" {
		if _, exists := s.byFederated[user.FederatedID]; exists {
			return storage.ErrDuplicate
		}
	}

	user.ID = uuid.New().String()
	user.CreatedAt = time.Now().UTC()

	s.users[user.ID] = *user
	s.byEmail[user.Email] = user.ID
	if user.FederatedID != "" {
		s.byFederated[user.FederatedID] = user.ID
	}
	return nil
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(s.byEmail, email)
}

// GetUserByFederatedID retrieves a user by Google subject.
func (s *Store) GetUserByFederatedID(ctx context.Context, federatedID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(s.byFederated, federatedID)
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &user, nil
}

// Len returns the number of stored users.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// lookup must be called with s.mu held.
func (s *Store) lookup(index map[string]string, key string) (*models.User, error) {
	if key == "" {
		return nil, storage.ErrNotFound
	}
	id, ok := index[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	// copy so callers cannot mutate stored state
	user := s.users[id]
	return &user, nil
}
