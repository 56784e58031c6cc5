// Package v1 provides the business logic for API version 1.
//
// Error Handling:
// Every failure returned by this package wraps one of four kind errors
// (ErrNotFound, ErrBadRequest, ErrUnauthorized, ErrConflict) through a more
// specific sentinel. Methods add context with fmt.Errorf("%w").
//
// Example Usage:
//
//	if row == nil {
//	    return nil, fmt.Errorf("get session %d: %w", id, ErrSessionNotFound)
//	}
//
// Error Checking (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrNotFound):
//	    c.JSON(http.StatusNotFound, ...)
//	case errors.Is(err, logicv1.ErrBadRequest):
//	    c.JSON(http.StatusBadRequest, ...)
//	}
package v1

import (
	"errors"
	"fmt"
)

// Error kinds. The web layer maps each kind to one HTTP status.
var (
	// ErrNotFound: HTTP Status 404 Not Found
	ErrNotFound = errors.New("not found")

	// ErrBadRequest: HTTP Status 400 Bad Request
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthorized: HTTP Status 401 Unauthorized
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict: the resource already exists.
	ErrConflict = errors.New("conflict")
)

// Sentinel errors for yoga-service operations.
var (
	// ErrSessionNotFound indicates no session has the requested id.
	ErrSessionNotFound = fmt.Errorf("session not found: %w", ErrNotFound)

	// ErrUserNotFound indicates no user has the requested id.
	ErrUserNotFound = fmt.Errorf("user not found: %w", ErrNotFound)

	// ErrTeacherNotFound indicates no teacher has the requested id.
	ErrTeacherNotFound = fmt.Errorf("teacher not found: %w", ErrNotFound)

	// ErrAlreadyParticipating indicates the user is already on the roster.
	ErrAlreadyParticipating = fmt.Errorf("user already participates: %w", ErrBadRequest)

	// ErrBlankSessionName indicates a session name made only of whitespace.
	ErrBlankSessionName = fmt.Errorf("session name must not be blank: %w", ErrBadRequest)

	// ErrNotParticipating indicates the user is not on the roster.
	ErrNotParticipating = fmt.Errorf("user does not participate: %w", ErrBadRequest)

	// ErrInvalidCredentials indicates the email or password is wrong.
	// Unknown emails use this error too so that existence is never revealed.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)

	// ErrForbiddenResource indicates the principal acts on a resource it does not own.
	ErrForbiddenResource = fmt.Errorf("not the resource owner: %w", ErrUnauthorized)

	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = fmt.Errorf("email already taken: %w", ErrConflict)
)
