// Package common defines sentinel errors shared by repositories, services and
// transports. Callers should match them with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Event errors (malformed or incomplete pipeline payloads).
	ErrorInvalidEvent = errors.New("invalid event")

	// Auth errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
