package auth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// FederatedIdentity holds the claims extracted from a verified identity assertion.
type FederatedIdentity struct {
	// Subject is the provider's stable user identifier ("sub").
	Subject string
	Email   string
	Name    string
}

// IdentityVerifier validates a third-party identity assertion.
type IdentityVerifier interface {
	Verify(ctx context.Context, assertion string) (*FederatedIdentity, error)
}

// GoogleVerifier validates Google ID tokens issued for a single OAuth client.
type GoogleVerifier struct {
	validator *idtoken.Validator
	clientID  string
}

// NewGoogleVerifier creates a verifier that accepts only tokens whose audience
// is clientID. Google's signing certificates are fetched and cached by the
// underlying validator.
func NewGoogleVerifier(ctx context.Context, clientID string, opts ...option.ClientOption) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, errors.New("google verifier: client ID is required")
	}
	validator, err := idtoken.NewValidator(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google verifier: %w", err)
	}
	return &GoogleVerifier{
		validator: validator,
		clientID:  clientID,
	}, nil
}

// Verify checks the token signature, audience, expiry and issuer, and returns
// the identity it asserts.
func (v *GoogleVerifier) Verify(ctx context.Context, assertion string) (*FederatedIdentity, error) {
	payload, err := v.validator.Validate(ctx, assertion, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !googleIssuers[payload.Issuer] {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, payload.Issuer)
	}
	if payload.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &FederatedIdentity{
		Subject: payload.Subject,
		Email:   claimString(payload.Claims, "email"),
		Name:    claimString(payload.Claims, "name"),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	v, _ := claims[key].(string)
	return v
}
