package shared

import "errors"

var (
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a duplicate username or email.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates the request carries no valid session.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden indicates an authenticated account lacking the required role or ownership.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
)

// Client-facing messages. Login failures always use InvalidCredentialsMessage.
const (
	InvalidCredentialsMessage = "Invalid username or password"
	NotAuthenticatedMessage   = "Not authenticated"
	ForbiddenMessage          = "Forbidden"
	InternalErrorMessage      = "Internal server error"
)

// Error pairs an error class with the message shown to the caller.
type Error struct {
	Kind    error
	Message string
}

// NewError builds an Error of the given class.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Message
}

// Unwrap exposes the class so errors.Is matches the sentinel.
func (e *Error) Unwrap() error {
	return e.Kind
}

// Validation returns a validation error carrying message.
func Validation(message string) error {
	return NewError(ErrValidation, message)
}

// Conflict returns a conflict error carrying message.
func Conflict(message string) error {
	return NewError(ErrConflict, message)
}

// UserSafeMessage returns the message that may be shown to clients for err.
func UserSafeMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return InvalidCredentialsMessage
	case errors.Is(err, ErrUnauthenticated):
		return NotAuthenticatedMessage
	case errors.Is(err, ErrForbidden):
		return ForbiddenMessage
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.Is(err, ErrValidation):
		return "Invalid request"
	case errors.Is(err, ErrConflict):
		return "Already exists"
	}
	return InternalErrorMessage
}
