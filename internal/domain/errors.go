package domain

import (
	"errors"
	"fmt"
)

// Predefined domain errors
var (
	// ErrNotFound resource does not exist
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput malformed or missing request data
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable a dependency (tool server, model endpoint) cannot be reached
	ErrUnavailable = errors.New("service unavailable")
	// ErrInternal internal error
	ErrInternal = errors.New("internal error")

	// ErrArtifactSkipped is returned by an ArtifactStore for artifacts it does
	// not persist (non-image kinds, empty payloads). Callers drop them silently.
	ErrArtifactSkipped = errors.New("artifact skipped")
	// ErrMaxStepsExceeded the agent kept calling tools past its step budget.
	ErrMaxStepsExceeded = errors.New("agent exceeded maximum tool steps")
)

// DomainError carries a stable code and a client-safe message.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements error (used for logs and internal propagation)
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage returns the message that may be shown to clients.
func (e *DomainError) UserMessage() string {
	return e.Message
}

// Unwrap returns the wrapped error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewNotFoundError builds a not-found error for a resource.
func NewNotFoundError(resourceType, name string) error {
	return &DomainError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s '%s' not found", resourceType, name),
		Err:     ErrNotFound,
	}
}

// NewInvalidInputError builds an invalid-input error.
func NewInvalidInputError(message string) error {
	return &DomainError{
		Code:    "INVALID_INPUT",
		Message: message,
		Err:     ErrInvalidInput,
	}
}

// NewUnavailableError wraps a dependency failure. The message names the
// dependency but never its internal details.
func NewUnavailableError(dependency string, err error) error {
	return &DomainError{
		Code:    "UNAVAILABLE",
		Message: fmt.Sprintf("%s is unavailable", dependency),
		Err:     fmt.Errorf("%w: %v", ErrUnavailable, err),
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) error {
	return &DomainError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Err:     fmt.Errorf("%w: %v", ErrInternal, err),
	}
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput reports whether err is an invalid-input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnavailable reports whether err is a dependency failure
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsInternalError reports whether err is an internal error
func IsInternalError(err error) bool {
	return errors.Is(err, ErrInternal)
}

// UserMessage extracts the client-safe message of err, falling back to a
// generic text for errors that are not DomainErrors.
func UserMessage(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.UserMessage()
	}
	return "an error occurred"
}
