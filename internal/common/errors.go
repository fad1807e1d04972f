// Package common defines shared constants and sentinel errors used across
// the gophauth server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors surfaced to callers of the authentication service.
	ErrInvalidInput           = errors.New("invalid input")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrStorageUnavailable     = errors.New("storage unavailable")

	// ErrAuthenticationFailed covers both an unknown email and a wrong
	// password. The message must stay generic.
	ErrAuthenticationFailed = errors.New("invalid email or password")

	// Token errors.
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)
