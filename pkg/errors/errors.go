package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeAgent represents turn-controller errors
	ErrorTypeAgent ErrorType = "agent"
	// ErrorTypeFunction represents function registry/dispatch errors
	ErrorTypeFunction ErrorType = "function"
	// ErrorTypeExec represents code execution errors
	ErrorTypeExec ErrorType = "exec"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
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

// Agent errors

// ErrUnknownInputMode is returned when an unrecognized human-input mode is configured
type ErrUnknownInputMode struct {
	*BaseError
	Mode string
}

func NewUnknownInputMode(mode string) *ErrUnknownInputMode {
	return &ErrUnknownInputMode{
		BaseError: NewBaseError(ErrorTypeAgent, fmt.Sprintf("unknown human input mode: %s", mode), nil),
		Mode:      mode,
	}
}

// Function errors

// ErrInvalidFunctionEntry is returned when a registry entry has both or
// neither of a direct callable and a bound receiver
type ErrInvalidFunctionEntry struct {
	*BaseError
	FunctionName string
}

func NewInvalidFunctionEntry(name string) *ErrInvalidFunctionEntry {
	return &ErrInvalidFunctionEntry{
		BaseError:    NewBaseError(ErrorTypeFunction, fmt.Sprintf("exactly one of a direct callable and a bound receiver must be set for function: %s", name), nil),
		FunctionName: name,
	}
}

// Exec errors

// ErrExecFailed is returned when the execution service itself fails to run
// a block (as opposed to the block exiting non-zero)
type ErrExecFailed struct {
	*BaseError
	Lang string
}

func NewExecFailed(lang string, err error) *ErrExecFailed {
	return &ErrExecFailed{
		BaseError: NewBaseError(ErrorTypeExec, fmt.Sprintf("failed to execute %s block", lang), err),
		Lang:      lang,
	}
}

// Config errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	if baseErr, ok := err.(*BaseError); ok {
		return baseErr.Type == errType
	}
	// Check wrapped errors
	if wrapped, ok := err.(interface{ Unwrap() error }); ok {
		if inner := wrapped.Unwrap(); inner != nil {
			return IsErrorType(inner, errType)
		}
	}
	return false
}
