// Package common defines the sentinel errors and small helpers shared by the
// credential store, the session service and the transports around them.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Credential and existence errors. Expected, user-correctable.
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyExists      = errors.New("user already exists")
	ErrInvalidInput       = errors.New("invalid input")

	// Persistence errors.
	ErrStorageFailure = errors.New("storage failure")
	ErrDecodeFailure  = errors.New("decode failure")
)

// IsCredentialError reports whether err is one of the expected,
// user-correctable authentication outcomes.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrInvalidInput)
}
