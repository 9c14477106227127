// Package mongo provides a MongoDB-backed implementation of the storage.Store interface.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mmynk/authd/internal/models"
	"github.com/mmynk/authd/internal/storage"
)

const usersCollection = "users"

var _ storage.Store = (*Store)(nil)

// Store implements storage.Store on a MongoDB users collection.
type Store struct {
	client *mongo.Client
	users  *mongo.Collection
}

// userDocument is the on-disk shape of a user.
type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	FullName     string             `bson:"full_name,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash,omitempty"`
	GoogleID     string             `bson:"google_id,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d *userDocument) toModel() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		FullName:     d.FullName,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FederatedID:  d.GoogleID,
		CreatedAt:    d.CreatedAt,
	}
}

// New connects to MongoDB, verifies the connection and ensures the unique
// indexes on email and google_id exist.
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	s := &Store{
		client: client,
		users:  client.Database(database).Collection(usersCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
		{
			// Partial so that local accounts without google_id do not collide.
			Keys: bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_google_id").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"google_id": bson.M{"$type": "string"}}),
		},
	})
	return err
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// CreateUser inserts a new user document.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	doc := userDocument{
		ID:           primitive.NewObjectID(),
		FullName:     user.FullName,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		GoogleID:     user.FederatedID,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}

	_, err := s.users.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return storage.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = doc.ID.Hex()
	user.CreatedAt = doc.CreatedAt
	return nil
}

// GetUserByEmail retrieves a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.findOne(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// GetUserByFederatedID retrieves a user by Google subject identifier.
func (s *Store) GetUserByFederatedID(ctx context.Context, federatedID string) (*models.User, error) {
	if federatedID == "" {
		return nil, storage.ErrNotFound
	}
	user, err := s.findOne(ctx, bson.M{"google_id": federatedID})
	if err != nil {
		return nil, fmt.Errorf("get user by google id: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by its ObjectID hex string.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, storage.ErrNotFound
	}
	user, err := s.findOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}
