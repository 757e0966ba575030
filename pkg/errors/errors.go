package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCancelled    ErrorCode = "CANCELLED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Workspace errors
	ErrFilesystem   ErrorCode = "FILESYSTEM"
	ErrVerification ErrorCode = "VERIFICATION"

	// Script errors
	ErrScriptNotFound  ErrorCode = "SCRIPT_NOT_FOUND"
	ErrScriptExecution ErrorCode = "SCRIPT_EXECUTION"

	// Stage errors
	ErrStageFailed ErrorCode = "STAGE_FAILED"

	// Run history errors
	ErrHistory ErrorCode = "HISTORY"
)

// OpsError represents a structured error with code and details
type OpsError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *OpsError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *OpsError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *OpsError) Is(target error) bool {
	var targetErr *OpsError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new OpsError with the given code and message
func New(code ErrorCode, message string) *OpsError {
	return &OpsError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new OpsError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *OpsError {
	return &OpsError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an OpsError
func Wrap(err error, code ErrorCode, message string) *OpsError {
	if err == nil {
		return nil
	}
	return &OpsError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *OpsError {
	if err == nil {
		return nil
	}
	return &OpsError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *OpsError) WithDetail(key string, value interface{}) *OpsError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *OpsError) WithDetails(details map[string]interface{}) *OpsError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var opsErr *OpsError
	if errors.As(err, &opsErr) {
		return opsErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an OpsError
func GetErrorCode(err error) ErrorCode {
	var opsErr *OpsError
	if errors.As(err, &opsErr) {
		return opsErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an OpsError
func GetErrorDetails(err error) map[string]interface{} {
	var opsErr *OpsError
	if errors.As(err, &opsErr) {
		return opsErr.Details
	}
	return nil
}
