package services

import "errors"

var (
	// ErrInvalidInput marks request payloads rejected before any external
	// call is attempted. Maps to HTTP 400.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthenticated marks a missing or GitHub-rejected credential.
	// Maps to HTTP 401.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrSessionNotFound marks an unknown session token. Maps to HTTP 404.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired marks a session past its TTL or whose embedded
	// GitHub token no longer verifies. The row is deleted as a side effect
	// of resolution. Maps to HTTP 401.
	ErrSessionExpired = errors.New("session expired")

	// ErrMalformedCiphertext marks an encrypted-key blob that is missing the
	// iv:ciphertext separator or fails hex decoding.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
)
