// Package storage provides abstractions for persistent user storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/authd/internal/models"
)

var (
	// ErrNotFound is returned when no user matches a lookup.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicate is returned when an insert violates the email or federated ID
	// uniqueness constraint.
	ErrDuplicate = errors.New("user already exists")
)

// Store defines the interface for user storage operations.
// This abstraction allows swapping storage backends (MongoDB, SQLite, memory)
// without changing the auth core.
type Store interface {
	// CreateUser persists a new user.
	// The user.ID and user.CreatedAt fields will be populated by the store.
	// Returns ErrDuplicate if the email or federated ID is already taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email address.
	// Returns ErrNotFound if no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByFederatedID retrieves a user by Google subject identifier.
	// Returns ErrNotFound if no user is linked to that identity.
	GetUserByFederatedID(ctx context.Context, federatedID string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	// Returns ErrNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
