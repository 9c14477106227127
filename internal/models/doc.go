// Package models defines the domain models shared by the auth core and the
// storage backends.
//
// There is a single entity, User. Stores assign its ID and CreatedAt; the auth
// core never updates or deletes a user once created.
//
// Accounts come in two flavors:
//   - local: created by registration with a full name and bcrypt password hash
//   - federated: created by registration with a Google ID, or auto-provisioned
//     on the first Google sign-in
//
// PublicProfile is what handlers serialize back to clients. PasswordHash and
// FederatedID are tagged json:"-" so a User can never leak them by accident.
package models
