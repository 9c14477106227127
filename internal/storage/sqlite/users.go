package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/authd/internal/models"
	"github.com/mmynk/authd/internal/storage"
)

const selectUser = `
	SELECT id, full_name, email, password_hash, google_id, created_at
	FROM users
`

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	id := uuid.New().String()
	createdAt := time.Now().UTC().Truncate(time.Second)

	var googleID sql.NullString
	if user.FederatedID != "" {
		googleID = sql.NullString{String: user.FederatedID, Valid: true}
	}

	query := `
		INSERT INTO users (id, full_name, email, password_hash, google_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		id,
		user.FullName,
		user.Email,
		user.PasswordHash,
		googleID,
		createdAt.Unix(),
	)
	if isUniqueViolation(err) {
		return storage.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = id
	user.CreatedAt = createdAt
	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.getUser(ctx, selectUser+"WHERE email = ?", email)
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// GetUserByFederatedID retrieves a user by their Google subject identifier.
func (s *SQLiteStore) GetUserByFederatedID(ctx context.Context, federatedID string) (*models.User, error) {
	if federatedID == "" {
		return nil, storage.ErrNotFound
	}
	user, err := s.getUser(ctx, selectUser+"WHERE google_id = ?", federatedID)
	if err != nil {
		return nil, fmt.Errorf("get user by google id: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.getUser(ctx, selectUser+"WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (s *SQLiteStore) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		user      models.User
		googleID  sql.NullString
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&googleID,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	user.FederatedID = googleID.String
	user.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &user, nil
}
