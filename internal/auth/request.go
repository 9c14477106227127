package auth

import (
	"strings"

	"github.com/mmynk/authd/internal/models"
)

// RegisterInput carries the fields accepted by Register. A non-empty
// FederatedID selects the federated branch.
type RegisterInput struct {
	FullName    string
	Email       string
	Password    string
	FederatedID string
}

func (in RegisterInput) normalize() RegisterInput {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.FederatedID = strings.TrimSpace(in.FederatedID)
	return in
}

// LoginRequest is either a LocalLogin or a FederatedLogin.
type LoginRequest interface {
	loginRequest()
}

// LocalLogin authenticates with email and password.
type LocalLogin struct {
	Email    string
	Password string
}

// FederatedLogin authenticates with a previously registered Google ID.
type FederatedLogin struct {
	FederatedID string
}

func (LocalLogin) loginRequest()     {}
func (FederatedLogin) loginRequest() {}

// ParseLoginRequest builds a LoginRequest from the raw login fields.
// Exactly one of password and federatedID may be set.
func ParseLoginRequest(email, password, federatedID string) (LoginRequest, error) {
	email = strings.TrimSpace(email)
	federatedID = strings.TrimSpace(federatedID)

	switch {
	case email == "" && federatedID == "":
		return nil, validationError(MsgMissingLoginIdentity)
	case federatedID != "" && password != "":
		return nil, validationError(MsgAmbiguousLogin)
	case federatedID != "":
		return FederatedLogin{FederatedID: federatedID}, nil
	case password == "":
		return nil, validationError(MsgMissingPassword)
	default:
		return LocalLogin{Email: email, Password: password}, nil
	}
}

// Result is returned by every successful authentication.
type Result struct {
	UserID  string
	Token   string
	Profile models.PublicProfile
}
