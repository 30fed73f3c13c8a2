package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
)

// Storage errors shared by every bounded context.
var (
	// ErrPersistenceConflict is returned by repositories when an insert hits a
	// uniqueness constraint. Sync and insight passes treat it as an idempotent no-op.
	ErrPersistenceConflict = errors.New("persistence: uniqueness conflict")

	// ErrStorageUnavailable marks a storage outage. It aborts the whole pass.
	ErrStorageUnavailable = errors.New("persistence: storage unavailable")
)
