package service

import (
	"errors"

	"reviewhub/internal/http-api/access"
)

// Shared error taxonomy surfaced by the services. Handlers map these to
// HTTP statuses; nothing here is retried internally.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")

	// review/rating invariants
	ErrReviewExists = errors.New("you have already reviewed this title")
	ErrInvalidScore = errors.New("score must be between 1 and 10")

	// catalog invariants
	ErrInvalidYear = errors.New("year cannot be in the future")

	// accounts
	ErrNameInUse        = errors.New("username already in use")
	ErrEmailInUse       = errors.New("email already in use")
	ErrReservedUsername = errors.New("username is reserved")
	ErrInvalidUsername  = errors.New("username contains invalid characters")
	ErrInvalidRole      = errors.New("unknown role")
	ErrInvalidCode      = errors.New("invalid or expired confirmation code")
	ErrInvalidToken     = errors.New("invalid token")
)

// decisionError converts a deny decision into the matching sentinel.
// Callers must only pass deny decisions.
func decisionError(d access.Decision) error {
	if d == access.DenyAnonymous {
		return ErrUnauthenticated
	}
	return ErrForbidden
}
