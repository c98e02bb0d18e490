package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNotFound indicates the requested record was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"
	// ErrorTypeInvalidInput indicates invalid input parameters
	ErrorTypeInvalidInput ErrorType = "INVALID_INPUT"
	// ErrorTypePayloadTooLarge indicates the request body exceeded the size cap
	ErrorTypePayloadTooLarge ErrorType = "PAYLOAD_TOO_LARGE"
	// ErrorTypeStorage indicates a storage-related error
	ErrorTypeStorage ErrorType = "STORAGE"
	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// LogError represents a custom error with additional context
type LogError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   string
}

// Error implements the error interface
func (e *LogError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *LogError) Unwrap() error {
	return e.Err
}

// New creates a new LogError
func New(errType ErrorType, message string, err error) *LogError {
	// Capture stack trace
	_, file, line, _ := runtime.Caller(1)
	stack := fmt.Sprintf("%s:%d", file, line)

	return &LogError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func isType(err error, t ErrorType) bool {
	var logErr *LogError
	if errors.As(err, &logErr) {
		return logErr.Type == t
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	return isType(err, ErrorTypeInvalidInput)
}

// IsPayloadTooLarge checks if the error is a payload too large error
func IsPayloadTooLarge(err error) bool {
	return isType(err, ErrorTypePayloadTooLarge)
}

// IsStorage checks if the error is a storage error
func IsStorage(err error) bool {
	return isType(err, ErrorTypeStorage)
}

// IsInternal checks if the error is an internal error
func IsInternal(err error) bool {
	return isType(err, ErrorTypeInternal)
}

// RecoverError recovers from a panic and converts it to a LogError
func RecoverError(r interface{}) error {
	if r == nil {
		return nil
	}

	var err error
	switch v := r.(type) {
	case error:
		err = v
	case string:
		err = fmt.Errorf("%s", v)
	default:
		err = fmt.Errorf("%v", v)
	}

	return New(ErrorTypeInternal, "recovered from panic", err)
}
