package orgscope

import (
	"errors"
	"fmt"

	"github.com/erp/operatingunit/internal/domain/shared"
)

// InvalidFieldError is returned when a write or a check names a field the
// model does not define.
type InvalidFieldError struct {
	Model string
	Field string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("Invalid field %q on model %q", e.Field, e.Model)
}

// Unwrap exposes the error as a shared.DomainError with code INVALID_FIELD
func (e *InvalidFieldError) Unwrap() error {
	return shared.NewDomainError(shared.CodeInvalidField, e.Error())
}

// Violation is one record whose field references records outside its scope
type Violation struct {
	Record    Ref
	Field     string
	Corecords RecordSet // the referenced records failing the predicate
}

// ConsistencyError aggregates every violation found by one check pass.
// Message holds the rendered report, which names at most
// MaxReportedViolations of them.
type ConsistencyError struct {
	Violations []Violation
	Message    string
}

func (e *ConsistencyError) Error() string {
	return e.Message
}

// Unwrap exposes the error as a shared.DomainError with code
// INCOMPATIBLE_OPERATING_UNIT
func (e *ConsistencyError) Unwrap() error {
	return shared.NewDomainError(shared.CodeIncompatibleScope, e.Message)
}

// IsInvalidField reports whether err is or wraps an InvalidFieldError
func IsInvalidField(err error) bool {
	var target *InvalidFieldError
	return errors.As(err, &target)
}

// AsConsistencyError extracts a ConsistencyError from err
func AsConsistencyError(err error) (*ConsistencyError, bool) {
	var target *ConsistencyError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
