package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	// ErrorTypeContract marks programmer-contract violations. They are
	// surfaced synchronously and never retried.
	ErrorTypeContract ErrorType = "contract"
	// ErrorTypeData marks problems with an individual piece of caller data,
	// such as one malformed cell-editor descriptor inside a batch.
	ErrorTypeData     ErrorType = "data"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeIO       ErrorType = "io"
	ErrorTypeInternal ErrorType = "internal"
)

// Error codes shared across the grid packages.
const (
	CodeEmptyHeader       = "EMPTY_HEADER"
	CodeNotLoaded         = "NOT_LOADED"
	CodeUnknownColumn     = "UNKNOWN_COLUMN"
	CodeDuplicateColumn   = "DUPLICATE_COLUMN"
	CodeInvalidColumn     = "INVALID_COLUMN"
	CodeUnsupportedModule = "UNSUPPORTED_MODULE"
	CodeInvalidDescriptor = "INVALID_DESCRIPTOR"
	CodeStaleLoad         = "STALE_LOAD"
	CodeDestroyed         = "DESTROYED"
	CodeResolveFailed     = "RESOLVE_FAILED"
)

// GridError is a structured error type with context.
type GridError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Column      string
	Recoverable bool
}

// Error implements the error interface.
func (e *GridError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Column != "" {
		parts = append(parts, "column:"+e.Column)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *GridError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a GridError of the same type and code, so
// errors.Is(err, ErrNotLoaded) matches any not-loaded failure regardless of
// its message or column.
func (e *GridError) Is(target error) bool {
	var t *GridError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *GridError) WithContext(key string, value interface{}) *GridError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithColumn adds column context.
func (e *GridError) WithColumn(column string) *GridError {
	e.Column = column

	return e
}

// Sentinels for errors.Is comparisons.
var (
	ErrEmptyHeader       = &GridError{Type: ErrorTypeContract, Code: CodeEmptyHeader, Message: "grid header must not be empty"}
	ErrNotLoaded         = &GridError{Type: ErrorTypeContract, Code: CodeNotLoaded, Message: "please load the Grid first"}
	ErrUnknownColumn     = &GridError{Type: ErrorTypeContract, Code: CodeUnknownColumn, Message: "unknown column"}
	ErrDuplicateColumn   = &GridError{Type: ErrorTypeContract, Code: CodeDuplicateColumn, Message: "duplicate column name"}
	ErrInvalidColumn     = &GridError{Type: ErrorTypeContract, Code: CodeInvalidColumn, Message: "invalid column name"}
	ErrUnsupportedModule = &GridError{Type: ErrorTypeData, Code: CodeUnsupportedModule, Message: "unsupported cell editor module"}
	ErrInvalidDescriptor = &GridError{Type: ErrorTypeData, Code: CodeInvalidDescriptor, Message: "invalid cell editor descriptor"}
	ErrStaleLoad         = &GridError{Type: ErrorTypeInternal, Code: CodeStaleLoad, Message: "load superseded by a newer load"}
	ErrDestroyed         = &GridError{Type: ErrorTypeContract, Code: CodeDestroyed, Message: "grid has been destroyed"}
)

// NewContractError creates a programmer-contract violation.
func NewContractError(code, message string) *GridError {
	return &GridError{
		Type:        ErrorTypeContract,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewDataError creates a per-entry data error.
func NewDataError(code, message string, cause error) *GridError {
	return &GridError{
		Type:        ErrorTypeData,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *GridError {
	return &GridError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *GridError {
	return &GridError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *GridError {
	return &GridError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NotLoaded returns a not-loaded error naming the rejected operation.
func NotLoaded(operation string) *GridError {
	return NewContractError(CodeNotLoaded, "please load the Grid first").
		WithContext("operation", operation)
}

// UnknownColumn returns an unknown-column error for name.
func UnknownColumn(name string) *GridError {
	return NewContractError(CodeUnknownColumn, "unknown column").WithColumn(name)
}

// DuplicateColumn returns a duplicate-column error for name.
func DuplicateColumn(name string) *GridError {
	return NewContractError(CodeDuplicateColumn, "duplicate column name").WithColumn(name)
}

// IsContractViolation checks if an error is a programmer-contract violation.
func IsContractViolation(err error) bool {
	var ge *GridError
	if errors.As(err, &ge) {
		return ge.Type == ErrorTypeContract
	}

	return false
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var ge *GridError
	if errors.As(err, &ge) {
		return ge.Recoverable
	}

	return false
}

// GetErrorType returns the error type if it's a GridError.
func GetErrorType(err error) ErrorType {
	var ge *GridError
	if errors.As(err, &ge) {
		return ge.Type
	}

	return ErrorTypeInternal
}
