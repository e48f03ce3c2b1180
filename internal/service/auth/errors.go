package auth

import "errors"

// Token failures. The API answers all of them with the same 401.
var (
	ErrInvalidToken = errors.New("invalid authentication token")
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrRevokedToken is a correctly signed token that is no longer in its
	// user's live set, after logout or account deletion.
	ErrRevokedToken = errors.New("authentication token has been revoked")

	ErrMissingToken = errors.New("authentication token is missing")
)
