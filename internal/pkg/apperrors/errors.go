package apperrors

import "errors"

// Workflow error taxonomy. Every error returned by the services wraps one of these.
var (
	// ErrValidationFailed is returned for malformed or missing input, before any store call
	ErrValidationFailed = errors.New("validation failed")
	// ErrPermissionDenied is returned when the principal lacks the required role or ownership
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidTransition is returned when a state machine precondition is not met
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrPrecondition is returned when a claim is filed against a non-claimable item
	ErrPrecondition = errors.New("precondition failed")
	// ErrConflict is returned when a concurrent transition raced and lost
	ErrConflict = errors.New("conflict")
	// ErrNotFoundOrForbidden hides whether a record exists from principals that may not see it
	ErrNotFoundOrForbidden = errors.New("not found")
	// ErrUnauthenticated is returned when an operation needs a signed-in principal
	ErrUnauthenticated = errors.New("authentication required")
)

// Store-level errors. Repositories return these and services translate them into the taxonomy.
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	// ErrStatusMismatch means a conditional update found the record in a different status
	ErrStatusMismatch = errors.New("status mismatch")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidFormat      = errors.New("invalid token format")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// NewValidationError creates a validation error with a user-facing message
func NewValidationError(message string) *CustomError {
	return &CustomError{Err: ErrValidationFailed, Message: message}
}

// NewForbiddenError creates an authorization error with a user-facing message
func NewForbiddenError(message string) *CustomError {
	return &CustomError{Err: ErrPermissionDenied, Message: message}
}

// NewInvalidTransitionError creates a transition error with a user-facing message
func NewInvalidTransitionError(message string) *CustomError {
	return &CustomError{Err: ErrInvalidTransition, Message: message}
}

// NewPreconditionError creates a precondition error with a user-facing message
func NewPreconditionError(message string) *CustomError {
	return &CustomError{Err: ErrPrecondition, Message: message}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) *CustomError {
	return &CustomError{Err: ErrConflict, Message: message}
}

// NewNotFoundError creates a not-found-or-forbidden error with a user-facing message
func NewNotFoundError(message string) *CustomError {
	return &CustomError{Err: ErrNotFoundOrForbidden, Message: message}
}

// Is returns whether err matches target or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// PublicMessage returns the summary that is safe to show to the caller.
// Errors outside the taxonomy collapse to a generic message.
func PublicMessage(err error) string {
	var custom *CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	switch {
	case errors.Is(err, ErrValidationFailed):
		return "The request is invalid"
	case errors.Is(err, ErrPermissionDenied):
		return "You don't have permission for this action"
	case errors.Is(err, ErrInvalidTransition):
		return "This action is not allowed in the record's current state"
	case errors.Is(err, ErrPrecondition):
		return "This item can no longer be claimed"
	case errors.Is(err, ErrConflict):
		return "The record was changed by someone else, reload and try again"
	case errors.Is(err, ErrNotFoundOrForbidden):
		return "Not found"
	case errors.Is(err, ErrUnauthenticated):
		return "Authentication required"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, ErrTokenExpired):
		return "Token has expired"
	case errors.Is(err, ErrTokenInvalid), errors.Is(err, ErrInvalidFormat):
		return "Invalid token"
	case errors.Is(err, ErrEmailAlreadyExists):
		return "An account with this email already exists"
	case errors.Is(err, ErrResourceNotFound):
		return "Not found"
	case errors.Is(err, ErrResourceAlreadyExists):
		return "Resource already exists"
	}
	return "Internal server error"
}
