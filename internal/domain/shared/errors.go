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

// Is reports whether target is a DomainError carrying the same code
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared across bounded contexts
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInvalidField      = "INVALID_FIELD"
	CodeIncompatibleScope = "INCOMPATIBLE_OPERATING_UNIT"
)

// Common domain errors, usable as errors.Is targets
var (
	ErrInvalidInput      = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidField      = NewDomainError(CodeInvalidField, "Invalid field")
	ErrIncompatibleScope = NewDomainError(CodeIncompatibleScope, "Incompatible companies on records")
)
