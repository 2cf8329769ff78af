package domain

import (
	"errors"
	"fmt"
)

// Predefined domain errors
var (
	// ErrNotFound resource does not exist
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput invalid input
	ErrInvalidInput = errors.New("invalid input")
	// ErrTurnInFlight a turn is already sending or streaming
	ErrTurnInFlight = errors.New("turn already in flight")
	// ErrProfileIncomplete the profile gate blocked the first turn
	ErrProfileIncomplete = errors.New("profile incomplete")
	// ErrServer the server rejected the request before streaming
	ErrServer = errors.New("server error")
	// ErrTransport network failure other than a user abort
	ErrTransport = errors.New("transport error")
	// ErrNotExpandable no client-held list to grow the visible window from
	ErrNotExpandable = errors.New("result set cannot be expanded")
)

// DomainError domain error
type DomainError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

// Error implements the error interface (used for logs and internal propagation)
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage returns a message fit for the transcript (no internal details)
func (e *DomainError) UserMessage() string {
	return e.Message
}

// Unwrap returns the wrapped error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(resourceType, name string) error {
	return &DomainError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s '%s' not found", resourceType, name),
		Err:     ErrNotFound,
	}
}

// NewInvalidInputError creates an invalid-input error
func NewInvalidInputError(message string) error {
	return &DomainError{
		Code:    "INVALID_INPUT",
		Message: message,
		Err:     ErrInvalidInput,
	}
}

// NewTurnInFlightError creates the rejection returned for a second submission
func NewTurnInFlightError() error {
	return &DomainError{
		Code:    "TURN_IN_FLIGHT",
		Message: "a reply is still streaming",
		Err:     ErrTurnInFlight,
	}
}

// NewProfileIncompleteError creates the profile gate error
func NewProfileIncompleteError() error {
	return &DomainError{
		Code:    "PROFILE_INCOMPLETE",
		Message: "complete your profile (location and at least one genre) to start the conversation",
		Err:     ErrProfileIncomplete,
	}
}

// NewServerError creates a server-declared error. An empty message falls
// back to a generic one.
func NewServerError(status int, message string) error {
	if message == "" {
		message = "Unable to complete the request."
	}
	return &DomainError{
		Code:    "SERVER_ERROR",
		Message: message,
		Status:  status,
		Err:     ErrServer,
	}
}

// NewTransportError creates a transport error
func NewTransportError(err error) error {
	return &DomainError{
		Code:    "TRANSPORT_ERROR",
		Message: "connection error",
		Err:     fmt.Errorf("%w: %v", ErrTransport, err),
	}
}

// NewNotExpandableError creates the error returned when the full list is gone
func NewNotExpandableError() error {
	return &DomainError{
		Code:    "NOT_EXPANDABLE",
		Message: "no more results held locally",
		Err:     ErrNotExpandable,
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

// IsTurnInFlight reports whether err rejected a concurrent submission
func IsTurnInFlight(err error) bool {
	return errors.Is(err, ErrTurnInFlight)
}

// IsProfileIncomplete reports whether err came from the profile gate
func IsProfileIncomplete(err error) bool {
	return errors.Is(err, ErrProfileIncomplete)
}

// IsServerError reports whether err is a server-declared error
func IsServerError(err error) bool {
	return errors.Is(err, ErrServer)
}

// IsTransportError reports whether err is a transport error
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsNotExpandable reports whether err is a not-expandable error
func IsNotExpandable(err error) bool {
	return errors.Is(err, ErrNotExpandable)
}

// UserMessage extracts the user-facing message of err
func UserMessage(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.UserMessage()
	}
	return err.Error()
}
