// Package auth implements account registration, password and Google login,
// and access token issuance.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/authd/internal/models"
	"github.com/mmynk/authd/internal/storage"
)

// UserStorage defines the user persistence operations the authenticator needs.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByFederatedID(ctx context.Context, federatedID string) (*models.User, error)
}

// Authenticator orchestrates registration, local login and Google login.
// It holds no mutable state; concurrent calls are safe as long as the
// collaborators are.
type Authenticator struct {
	storage  UserStorage
	hasher   PasswordHasher
	tokens   TokenIssuer
	verifier IdentityVerifier
	logger   *slog.Logger
}

// NewAuthenticator creates an authenticator over the given collaborators.
func NewAuthenticator(storage UserStorage, hasher PasswordHasher, tokens TokenIssuer, verifier IdentityVerifier, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		storage:  storage,
		hasher:   hasher,
		tokens:   tokens,
		verifier: verifier,
		logger:   logger,
	}
}

// Register creates a local account (full name, email, password) or a federated
// account (email, Google ID) and returns a token for it.
func (a *Authenticator) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	in = in.normalize()

	federated := in.FederatedID != ""
	if federated {
		if in.Email == "" {
			return nil, validationError(MsgMissingFederatedFields)
		}
	} else if in.FullName == "" || in.Email == "" || in.Password == "" {
		return nil, validationError(MsgMissingLocalFields)
	}
	if err := validateProfile(in.FullName, in.Email); err != nil {
		return nil, err
	}

	// Advisory only: the store's unique index decides concurrent races below.
	if err := a.ensureAbsent(ctx, a.storage.GetUserByEmail, in.Email, MsgEmailInUse); err != nil {
		return nil, err
	}
	if federated {
		if err := a.ensureAbsent(ctx, a.storage.GetUserByFederatedID, in.FederatedID, MsgGoogleAccountInUse); err != nil {
			return nil, err
		}
	}

	user := &models.User{
		FullName:    in.FullName,
		Email:       in.Email,
		FederatedID: in.FederatedID,
	}
	if !federated {
		hash, err := a.hasher.Hash(in.Password)
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, validationError(MsgPasswordTooLong)
		}
		if err != nil {
			return nil, unexpectedError("failed to hash password", err)
		}
		user.PasswordHash = hash
	}

	if err := a.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, a.duplicateError(ctx, user)
		}
		return nil, unexpectedError("failed to create user", err)
	}

	a.logger.Info("User registered", "user_id", user.ID, "federated", user.IsFederated())
	return a.issue(user)
}

// Login authenticates a LocalLogin or FederatedLogin request.
func (a *Authenticator) Login(ctx context.Context, req LoginRequest) (*Result, error) {
	var (
		user *models.User
		err  error
	)
	switch r := req.(type) {
	case LocalLogin:
		user, err = a.loginLocal(ctx, r)
	case FederatedLogin:
		user, err = a.loginFederated(ctx, r)
	default:
		return nil, validationError(MsgMissingLoginIdentity)
	}
	if err != nil {
		return nil, err
	}

	a.logger.Info("User logged in", "user_id", user.ID)
	return a.issue(user)
}

func (a *Authenticator) loginLocal(ctx context.Context, req LocalLogin) (*models.User, error) {
	user, err := a.storage.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, authError(MsgUserNotFound)
	}
	if err != nil {
		return nil, unexpectedError("failed to look up user", err)
	}

	// Accounts created through Google have no password to match.
	if !user.HasPassword() {
		return nil, authError(MsgPasswordMismatch)
	}
	err = a.hasher.Compare(user.PasswordHash, req.Password)
	if errors.Is(err, ErrPasswordMismatch) {
		a.logger.Warn("Password mismatch", "user_id", user.ID)
		return nil, authError(MsgPasswordMismatch)
	}
	if err != nil {
		return nil, unexpectedError("failed to verify password", err)
	}
	return user, nil
}

func (a *Authenticator) loginFederated(ctx context.Context, req FederatedLogin) (*models.User, error) {
	user, err := a.storage.GetUserByFederatedID(ctx, req.FederatedID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, authError(MsgUserNotFound)
	}
	if err != nil {
		return nil, unexpectedError("failed to look up user", err)
	}
	return user, nil
}

// GoogleLogin verifies a Google ID token and returns a token for the matching
// account, creating the account on first sight.
func (a *Authenticator) GoogleLogin(ctx context.Context, assertion string) (*Result, error) {
	assertion = strings.TrimSpace(assertion)
	if assertion == "" {
		return nil, validationError(MsgMissingGoogleToken)
	}

	identity, err := a.verifier.Verify(ctx, assertion)
	if err != nil {
		a.logger.Warn("Google token rejected", "error", err)
		return nil, authError(MsgInvalidGoogleToken)
	}

	user, err := a.storage.GetUserByFederatedID(ctx, identity.Subject)
	if errors.Is(err, storage.ErrNotFound) {
		user, err = a.provision(ctx, identity)
	}
	if err != nil {
		var authErr *Error
		if errors.As(err, &authErr) {
			return nil, err
		}
		return nil, unexpectedError("failed to look up user", err)
	}

	return a.issue(user)
}

// provision creates the account for a never-seen Google identity. If another
// request created it concurrently, the stored account is returned instead.
func (a *Authenticator) provision(ctx context.Context, identity *FederatedIdentity) (*models.User, error) {
	user := &models.User{
		FullName:    strings.TrimSpace(identity.Name),
		Email:       strings.TrimSpace(identity.Email),
		FederatedID: identity.Subject,
	}

	err := a.storage.CreateUser(ctx, user)
	if err == nil {
		a.logger.Info("User provisioned from Google", "user_id", user.ID)
		return user, nil
	}
	if !errors.Is(err, storage.ErrDuplicate) {
		return nil, unexpectedError("failed to create user", err)
	}

	existing, lookupErr := a.storage.GetUserByFederatedID(ctx, identity.Subject)
	if lookupErr == nil {
		return existing, nil
	}
	if errors.Is(lookupErr, storage.ErrNotFound) {
		// The duplicate was the email: it belongs to a different account.
		return nil, conflictError(MsgEmailInUse)
	}
	return nil, unexpectedError("failed to look up user", lookupErr)
}

// duplicateError names the key a lost insert race collided on.
func (a *Authenticator) duplicateError(ctx context.Context, user *models.User) error {
	if !user.IsFederated() {
		return conflictError(MsgEmailInUse)
	}
	_, err := a.storage.GetUserByFederatedID(ctx, user.FederatedID)
	switch {
	case err == nil:
		return conflictError(MsgGoogleAccountInUse)
	case errors.Is(err, storage.ErrNotFound):
		return conflictError(MsgEmailInUse)
	default:
		return unexpectedError("failed to look up user", err)
	}
}

func (a *Authenticator) ensureAbsent(ctx context.Context, lookup func(context.Context, string) (*models.User, error), key, conflictMsg string) error {
	_, err := lookup(ctx, key)
	if err == nil {
		return conflictError(conflictMsg)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return unexpectedError("failed to look up user", err)
	}
	return nil
}

func (a *Authenticator) issue(user *models.User) (*Result, error) {
	token, err := a.tokens.Generate(user)
	if err != nil {
		return nil, unexpectedError("failed to issue token", err)
	}
	return &Result{
		UserID:  user.ID,
		Token:   token,
		Profile: user.Profile(),
	}, nil
}
