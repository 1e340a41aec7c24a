package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Auth flow errors
	ErrEmailNotVerified = errors.New("email address not verified")
	ErrAdminNotApproved = errors.New("admin account pending approval")
	ErrInvalidOTP       = errors.New("invalid or expired code")
	ErrSelfAction       = errors.New("action not permitted on own account")
)

// ValidationError reports missing or malformed input. Message is safe to
// return to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets callers match any ValidationError with errors.Is(err, ErrBadRequest).
func (e *ValidationError) Is(target error) bool {
	return target == ErrBadRequest
}

// NewValidationError creates a ValidationError with the given message
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}
