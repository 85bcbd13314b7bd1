package application

import (
	"errors"

	"github.com/example/conference-planner/internal/persistence"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a create collides with an existing resource.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned when authentication material does not match.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAccountDisabled is returned when the account exists but may not log in.
	ErrAccountDisabled = errors.New("application: account disabled")
	// ErrSessionExpired is returned when an auth session outlived its validity window.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when an auth session was explicitly revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// SpeakerConflictError refuses an assignment because at least one speaker of
// the session cannot attend the target slot. Conflicts carry the alternative
// time ranges where the speaker remains available so callers can surface a
// useful message.
type SpeakerConflictError struct {
	Conflicts []SpeakerConflict
}

// Error implements the error interface.
func (e *SpeakerConflictError) Error() string {
	if e == nil {
		return ""
	}
	return "speaker unavailable for slot"
}

// mapStorageError translates persistence sentinels into application sentinels.
func mapStorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		return ErrAlreadyExists
	}
	return err
}
