// Package common defines shared constants and sentinel errors used across
// facegate layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrStoreWriteFailed = errors.New("store write failed")
	ErrStoreReadFailed  = errors.New("store read failed")
	ErrMalformedRecord  = errors.New("malformed record")

	// Transport errors.
	ErrTransportClosed = errors.New("transport closed")

	// Workflow errors.
	ErrAcquireTimeout = errors.New("feature acquisition timed out")
	ErrBusy           = errors.New("another workflow is running")

	// Validation errors.
	ErrInvalidDigest   = errors.New("invalid digest")
	ErrInvalidIdentity = errors.New("invalid identity number")

	// Control API errors.
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrWeakSecretKey = errors.New("control API secret key not set")
)
