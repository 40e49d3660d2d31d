package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies failures by how the engine must react to them.
type ErrorType string

const (
	// ErrorTypeValidation covers missing or malformed required attributes.
	// A validation failure aborts the operation before any write is attempted.
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	// ErrorTypeConflict is a save-time uniqueness collision. It is the only
	// error that triggers the automatic retry-as-update.
	ErrorTypeConflict ErrorType = "CONFLICT_ERROR"
	// ErrorTypeStore is any other record store failure. Terminal, reported
	// verbatim to the caller.
	ErrorTypeStore ErrorType = "STORE_ERROR"
	// ErrorTypeNotFound signals no record exists for a natural key.
	ErrorTypeNotFound ErrorType = "NOT_FOUND_ERROR"
	// ErrorTypeNotification covers outbound notifier failures. Always logged
	// and swallowed, never propagated to the mutation that triggered them.
	ErrorTypeNotification ErrorType = "NOTIFICATION_ERROR"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

// Common application errors
var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrUniquenessConflict  = errors.New("uniqueness conflict on natural key")
	ErrEmptyNaturalKey     = errors.New("natural key must not be empty")
	ErrEmptyPartition      = errors.New("partition must not be empty")
	ErrAmbiguousNaturalKey = errors.New("multiple records share one natural key")
	ErrInvalidPayload      = errors.New("invalid payload")
)

// AppError represents an application error with enough context for the caller
// to diagnose without re-running with verbose tracing.
type AppError struct {
	Type      ErrorType              `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	HTTPCode  int                    `json:"-"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Cause     error                  `json:"-"`
	Component string                 `json:"component,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(errorType ErrorType, message string, httpCode int) *AppError {
	return &AppError{
		Type:     errorType,
		Message:  message,
		HTTPCode: httpCode,
		Details:  make(map[string]interface{}),
	}
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithCause adds the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithComponent adds the component name
func (e *AppError) WithComponent(component string) *AppError {
	e.Component = component
	return e
}

// WithDetail adds a detail field
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrorTypeValidation, message, http.StatusBadRequest)
}

// NewConflictError creates a save-time uniqueness conflict error
func NewConflictError(message string) *AppError {
	return NewAppError(ErrorTypeConflict, message, http.StatusConflict)
}

// NewStoreError creates a terminal record store error
func NewStoreError(message string) *AppError {
	return NewAppError(ErrorTypeStore, message, http.StatusBadGateway)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// NewNotificationError creates an outbound notification error
func NewNotificationError(message string) *AppError {
	return NewAppError(ErrorTypeNotification, message, http.StatusInternalServerError)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return NewAppError(ErrorTypeInternal, message, http.StatusInternalServerError)
}

// AttributeWarning records one optional attribute that failed to coerce or
// set. Warnings are accumulated and reported alongside the success value;
// they never abort the enclosing operation.
type AttributeWarning struct {
	Attribute string      `json:"attribute"`
	Message   string      `json:"message"`
	Value     interface{} `json:"value,omitempty"`
}

// Warnings is an ordered collection of per-attribute warnings.
type Warnings struct {
	Items []AttributeWarning `json:"warnings"`
}

// NewWarnings creates an empty warning collection
func NewWarnings() *Warnings {
	return &Warnings{
		Items: make([]AttributeWarning, 0),
	}
}

// Add appends a warning for one attribute
func (w *Warnings) Add(attribute, message string, value interface{}) *Warnings {
	w.Items = append(w.Items, AttributeWarning{
		Attribute: attribute,
		Message:   message,
		Value:     value,
	})
	return w
}

// Merge appends all warnings from another collection
func (w *Warnings) Merge(other *Warnings) *Warnings {
	if other != nil {
		w.Items = append(w.Items, other.Items...)
	}
	return w
}

// HasWarnings returns true if any attribute failed
func (w *Warnings) HasWarnings() bool {
	return len(w.Items) > 0
}

// WrapError wraps an error with context
func WrapError(err error, message string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}

// IsNotFound checks if an error signals a missing record
func IsNotFound(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == ErrorTypeNotFound
	}
	return errors.Is(err, ErrRecordNotFound)
}

// IsConflict checks if an error is a save-time uniqueness conflict
func IsConflict(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == ErrorTypeConflict
	}
	return errors.Is(err, ErrUniquenessConflict)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == ErrorTypeValidation
	}
	return false
}
