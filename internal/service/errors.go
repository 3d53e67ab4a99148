package service

import "errors"

// Sentinel errors returned by the services.  Handlers map them to HTTP
// status codes with errors.Is; anything else is a store failure.
var (
	// ErrValidation marks malformed or missing input.  It is usually
	// wrapped with a detail message.
	ErrValidation = errors.New("validation failed")
	// ErrEmailTaken is returned by Signup when the email is registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers a failed login and a token that does
	// not resolve to an existing account.  It never says which part failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound is returned for todos that do not exist or are owned
	// by someone else.
	ErrNotFound = errors.New("todo not found")
)
