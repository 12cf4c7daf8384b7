package services

import (
	"errors"
	"fmt"
)

// ErrorType classifies a DomainError; handlers pick the HTTP status from it.
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
)

// DomainError is the error shape returned by the auth service.
// Message is safe to show to clients; Err is for logs only.
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

func (e *DomainError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError carrying the same Type, so errors.Is works
// against the sentinels below regardless of message or cause.
func (e *DomainError) Is(target error) bool {
	other, ok := target.(*DomainError)
	return ok && other.Type == e.Type
}

// WithDetail records a per-field detail and returns e for chaining.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: map[string]interface{}{},
	}
}

// Sentinels are shared; never call WithDetail on them.
var (
	ErrInvalidInput    = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrInvalidPassword = NewDomainError(ErrorTypeValidation, "password must be between 8 and 72 bytes", nil)

	// ErrInvalidCredentials covers both an unknown email and a wrong password
	ErrInvalidCredentials = NewDomainError(ErrorTypeUnauthorized, "invalid email or password", nil)
	ErrUnauthenticated    = NewDomainError(ErrorTypeUnauthorized, "authentication required", nil)

	ErrAlreadyExists = NewDomainError(ErrorTypeConflict, "email already registered", nil)
)

// WrapInternal hides err behind message; the cause is logged, never returned.
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

func asDomainError(err error) (*DomainError, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

func IsValidationError(err error) bool   { return GetErrorType(err) == ErrorTypeValidation }
func IsUnauthorizedError(err error) bool { return GetErrorType(err) == ErrorTypeUnauthorized }
func IsConflictError(err error) bool     { return GetErrorType(err) == ErrorTypeConflict }
func IsInternalError(err error) bool     { return GetErrorType(err) == ErrorTypeInternal }

// GetErrorType returns "" for errors outside the taxonomy.
func GetErrorType(err error) ErrorType {
	if domainErr, ok := asDomainError(err); ok {
		return domainErr.Type
	}
	return ""
}

func GetErrorDetails(err error) map[string]interface{} {
	if domainErr, ok := asDomainError(err); ok {
		return domainErr.Details
	}
	return nil
}

func GetErrorMessage(err error) string {
	if domainErr, ok := asDomainError(err); ok {
		return domainErr.Message
	}
	return ""
}
