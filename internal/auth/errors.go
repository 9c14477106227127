package auth

import (
	"errors"
	"fmt"
)

// Kind classifies failures returned by the Authenticator.
type Kind int

const (
	// KindUnexpected covers collaborator failures (store, hashing, signing).
	KindUnexpected Kind = iota
	// KindValidation covers missing or malformed input.
	KindValidation
	// KindConflict covers duplicate accounts.
	KindConflict
	// KindAuth covers bad credentials and rejected identity assertions.
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	default:
		return "unexpected"
	}
}

// Client-facing messages.
const (
	MsgMissingFederatedFields = "Please provide email and Google ID"
	MsgMissingLocalFields     = "Please provide all required fields (fullName, email, password)"
	MsgMissingLoginIdentity   = "Please provide email or Google ID"
	MsgMissingPassword        = "Please provide a password"
	MsgAmbiguousLogin         = "Please provide either a password or a Google ID, not both"
	MsgMissingGoogleToken     = "Please provide a Google token"
	MsgPasswordTooLong        = "Password must be at most 72 bytes"
	MsgEmailInUse             = "Email is already in use"
	MsgGoogleAccountInUse     = "Google account is already registered"
	MsgUserNotFound           = "User not found"
	MsgPasswordMismatch       = "Password does not match"
	MsgInvalidGoogleToken     = "Invalid Google token!"
)

// Error is the typed failure returned by every Authenticator operation.
// Message is safe to show to clients; Err carries the underlying cause for
// diagnostics and is only set for unexpected failures.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err. Errors that are not *Error are unexpected.
func KindOf(err error) Kind {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return KindUnexpected
}

// MessageOf returns the client-facing message of err.
func MessageOf(err error) string {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	return err.Error()
}

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func conflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func authError(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

func unexpectedError(msg string, err error) *Error {
	return &Error{Kind: KindUnexpected, Message: msg, Err: err}
}
