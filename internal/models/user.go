package models

import "time"

// User represents an account that can authenticate against the service.
//
// A user is either a local account (PasswordHash set), a federated account
// (FederatedID set), or in principle both.
type User struct {
	// ID is the unique identifier assigned by the store on creation.
	ID string `json:"id"`

	// FullName is the display name. Required for local accounts, at most 50 characters.
	FullName string `json:"fullName"`

	// Email is the user's email address (unique).
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// Empty for accounts created through Google sign-in.
	PasswordHash string `json:"-"`

	// FederatedID is the Google subject identifier (unique when present).
	FederatedID string `json:"-"`

	// CreatedAt is set by the store when the user is inserted.
	CreatedAt time.Time `json:"-"`
}

// PublicProfile is the only view of a user that leaves the service.
type PublicProfile struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Profile returns the public view of the user.
func (u *User) Profile() PublicProfile {
	return PublicProfile{
		FullName: u.FullName,
		Email:    u.Email,
	}
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// IsFederated reports whether the account is linked to a Google identity.
func (u *User) IsFederated() bool {
	return u.FederatedID != ""
}
