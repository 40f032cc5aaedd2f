package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeRequest represents connection-request lifecycle errors
	ErrorTypeRequest ErrorType = "request"
	// ErrorTypeConnection represents established-connection errors
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeTypeChange represents type-change workflow errors
	ErrorTypeTypeChange ErrorType = "type_change"
	// ErrorTypeValidation represents input validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeBackend represents storage backend errors
	ErrorTypeBackend ErrorType = "backend"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// ErrNotFound is returned when a request, connection or record does not exist
type ErrNotFound struct {
	*BaseError
	Resource string
	ID       string
}

func NewNotFound(resource, id string) *ErrNotFound {
	return &ErrNotFound{
		BaseError: NewBaseError(ErrorTypeRequest, fmt.Sprintf("%s not found: %s", resource, id), nil),
		Resource:  resource,
		ID:        id,
	}
}

// ErrAlreadyConnected is returned when a connection already exists for the pair
type ErrAlreadyConnected struct {
	*BaseError
	UserA string
	UserB string
}

func NewAlreadyConnected(userA, userB string) *ErrAlreadyConnected {
	return &ErrAlreadyConnected{
		BaseError: NewBaseError(ErrorTypeConnection, fmt.Sprintf("users already connected: %s, %s", userA, userB), nil),
		UserA:     userA,
		UserB:     userB,
	}
}

// ErrRequestAlreadyPending is returned when a connection request is already
// pending between the pair, in either direction
type ErrRequestAlreadyPending struct {
	*BaseError
	UserA string
	UserB string
}

func NewRequestAlreadyPending(userA, userB string) *ErrRequestAlreadyPending {
	return &ErrRequestAlreadyPending{
		BaseError: NewBaseError(ErrorTypeRequest, fmt.Sprintf("connection request already pending: %s, %s", userA, userB), nil),
		UserA:     userA,
		UserB:     userB,
	}
}

// ErrNotConnected is returned when a type change is proposed for a pair with
// no established connection
type ErrNotConnected struct {
	*BaseError
	UserA string
	UserB string
}

func NewNotConnected(userA, userB string) *ErrNotConnected {
	return &ErrNotConnected{
		BaseError: NewBaseError(ErrorTypeTypeChange, fmt.Sprintf("no connection exists: %s, %s", userA, userB), nil),
		UserA:     userA,
		UserB:     userB,
	}
}

// ErrTypeChangePending is returned when another type-change request is already
// pending for the pair
type ErrTypeChangePending struct {
	*BaseError
	UserA string
	UserB string
}

func NewTypeChangePending(userA, userB string) *ErrTypeChangePending {
	return &ErrTypeChangePending{
		BaseError: NewBaseError(ErrorTypeTypeChange, fmt.Sprintf("type change already pending: %s, %s", userA, userB), nil),
		UserA:     userA,
		UserB:     userB,
	}
}

// ErrAlreadyProcessed is returned when responding to a type-change request
// that has already been resolved
type ErrAlreadyProcessed struct {
	*BaseError
	RequestID string
	Status    string
}

func NewAlreadyProcessed(requestID, status string) *ErrAlreadyProcessed {
	return &ErrAlreadyProcessed{
		BaseError: NewBaseError(ErrorTypeTypeChange, fmt.Sprintf("request already processed: %s (status: %s)", requestID, status), nil),
		RequestID: requestID,
		Status:    status,
	}
}

// ErrUnauthorized is returned when a caller other than the designated
// recipient attempts to resolve a request
type ErrUnauthorized struct {
	*BaseError
	RequestID string
	UserID    string
}

func NewUnauthorized(requestID, userID string) *ErrUnauthorized {
	return &ErrUnauthorized{
		BaseError: NewBaseError(ErrorTypeTypeChange, fmt.Sprintf("user %s may not respond to request %s", userID, requestID), nil),
		RequestID: requestID,
		UserID:    userID,
	}
}

// ErrValidation is returned when a required field is missing or malformed
type ErrValidation struct {
	*BaseError
	Field  string
	Reason string
}

func NewValidation(field, reason string) *ErrValidation {
	return &ErrValidation{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("invalid %s: %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrBackendUnavailable signals that a storage backend could not be reached.
// It is consumed by the backend selector and never surfaced to callers.
type ErrBackendUnavailable struct {
	*BaseError
	Backend string
}

func NewBackendUnavailable(backend string, err error) *ErrBackendUnavailable {
	return &ErrBackendUnavailable{
		BaseError: NewBaseError(ErrorTypeBackend, fmt.Sprintf("backend unavailable: %s", backend), err),
		Backend:   backend,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	var base *BaseError
	if errors.As(err, &base) {
		return base.Type == errType
	}
	return false
}

// IsNotFound reports whether err is an ErrNotFound
func IsNotFound(err error) bool {
	var e *ErrNotFound
	return errors.As(err, &e)
}

// IsAlreadyConnected reports whether err is an ErrAlreadyConnected
func IsAlreadyConnected(err error) bool {
	var e *ErrAlreadyConnected
	return errors.As(err, &e)
}

// IsRequestAlreadyPending reports whether err is an ErrRequestAlreadyPending
func IsRequestAlreadyPending(err error) bool {
	var e *ErrRequestAlreadyPending
	return errors.As(err, &e)
}

// IsNotConnected reports whether err is an ErrNotConnected
func IsNotConnected(err error) bool {
	var e *ErrNotConnected
	return errors.As(err, &e)
}

// IsTypeChangePending reports whether err is an ErrTypeChangePending
func IsTypeChangePending(err error) bool {
	var e *ErrTypeChangePending
	return errors.As(err, &e)
}

// IsAlreadyProcessed reports whether err is an ErrAlreadyProcessed
func IsAlreadyProcessed(err error) bool {
	var e *ErrAlreadyProcessed
	return errors.As(err, &e)
}

// IsUnauthorized reports whether err is an ErrUnauthorized
func IsUnauthorized(err error) bool {
	var e *ErrUnauthorized
	return errors.As(err, &e)
}

// IsValidation reports whether err is an ErrValidation
func IsValidation(err error) bool {
	var e *ErrValidation
	return errors.As(err, &e)
}

// IsConflict reports whether err represents a state conflict the caller
// can surface as "already done"
func IsConflict(err error) bool {
	return IsAlreadyConnected(err) || IsRequestAlreadyPending(err) ||
		IsTypeChangePending(err) || IsAlreadyProcessed(err)
}
