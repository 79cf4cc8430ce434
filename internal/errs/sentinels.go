// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

var (
	// ErrMissingAPIKey indicates the active provider has no usable API credential.
	ErrMissingAPIKey = errors.New("missing api key")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrRateLimited indicates a temporary sign-in lock after repeated failures.
	ErrRateLimited = errors.New("rate limited")

	// ErrConfirmationRequired indicates sign-up succeeded but the email is unconfirmed.
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrSessionExpired indicates the session token is no longer valid.
	ErrSessionExpired = errors.New("session expired")

	// ErrTokenInvalid indicates a one-time token (magic link, reset, confirm)
	// is unknown, consumed, or past its expiry.
	ErrTokenInvalid = errors.New("token invalid")
)
