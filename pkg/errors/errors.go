package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Generic errors shared across modules.
var (
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "Validation fails")
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Business errors. Message strings are part of the client contract and all
// surface as HTTP 400, matching the API this service replaces.
var (
	ErrStudentNotFound   = New("STUDENT_NOT_FOUND", http.StatusBadRequest, "Student does not exists")
	ErrPlanNotFound      = New("PLAN_NOT_FOUND", http.StatusBadRequest, "Plan does not exists")
	ErrEnrollNotFound    = New("ENROLL_NOT_FOUND", http.StatusBadRequest, "Enroll does not exists")
	ErrHelpOrderNotFound = New("HELP_ORDER_NOT_FOUND", http.StatusBadRequest, "Help order does not exists")
	ErrStudentExists     = New("STUDENT_EXISTS", http.StatusBadRequest, "Student already exists")
	ErrCheckinLimit      = New("CHECKIN_LIMIT", http.StatusBadRequest, "Student has reached checkins limit")
	ErrNotEnrolled       = New("NOT_ENROLLED", http.StatusBadRequest, "User is not enrolled")
	ErrUserExists        = New("USER_EXISTS", http.StatusBadRequest, "User already exists")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Is reports whether err matches the target domain error by code.
func Is(err error, target *Error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return target != nil && e.Code == target.Code
}
