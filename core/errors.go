package core

import "errors"

var (
	// ErrConfig is fatal and startup-time only; the process must not
	// accept traffic in this state
	ErrConfig = errors.New("invalid configuration")

	// ErrValidation means the caller supplied malformed input
	ErrValidation = errors.New("invalid request")

	// ErrAuthenticationFailed covers every negative signature/address
	// outcome; callers never learn which sub-check failed
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrDuplicateIdentity is an address or handle collision; an
	// expected outcome under concurrent registration, not a bug
	ErrDuplicateIdentity = errors.New("already registered")

	// ErrVault marks a corrupt or malformed encrypted record
	ErrVault = errors.New("vault record malformed")

	// ErrPersistence means the underlying store is unavailable
	ErrPersistence = errors.New("storage unavailable")

	ErrTokenExpired = errors.New("token has expired")
	ErrInvalidToken = errors.New("invalid token")
)
