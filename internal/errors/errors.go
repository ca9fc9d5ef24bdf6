// Package errors defines the typed errors returned by the registry.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// StorageInit indicates the storage root or one of its subdirectories could not be created
	StorageInit ErrorCode = "STORAGE_INIT"
	// ProjectDecodeFailed indicates a project file exists but cannot be read or decoded
	ProjectDecodeFailed ErrorCode = "PROJECT_DECODE_FAILED"
	// DuplicateProject indicates two project files declare the same ID
	DuplicateProject ErrorCode = "DUPLICATE_PROJECT"
	// EmptyID indicates a project without an ID was passed to a mutation
	EmptyID ErrorCode = "EMPTY_ID"
	// InvalidID indicates a project ID that cannot be used as a file name
	InvalidID ErrorCode = "INVALID_ID"
	// InvalidTimestamp indicates a last_updated value that is not an ISO 8601 date or date-time
	InvalidTimestamp ErrorCode = "INVALID_TIMESTAMP"
	// ProjectNotFound indicates the project is absent from the in-memory index
	ProjectNotFound ErrorCode = "PROJECT_NOT_FOUND"
	// ProjectFileMissing indicates the project is indexed but its file is gone
	ProjectFileMissing ErrorCode = "PROJECT_FILE_MISSING"
	// IdentityMismatch indicates a merge between records of different identity
	IdentityMismatch ErrorCode = "IDENTITY_MISMATCH"
	// WriteFailed indicates a record file could not be written
	WriteFailed ErrorCode = "WRITE_FAILED"
	// EncodeFailed indicates a record could not be serialized
	EncodeFailed ErrorCode = "ENCODE_FAILED"
	// Unsupported indicates an operation that is declared but not implemented
	Unsupported ErrorCode = "UNSUPPORTED"
	// ConfigInvalid indicates an invalid configuration value
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
)

// Error represents a registry error with a stable code and an optional cause.
type Error struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new Error
func New(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Newf creates a new Error without a cause and a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether err's chain contains an *Error with the given code.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsFatal reports whether err is one of the registry's typed errors.
// Soft per-record failures are never returned as errors, so every typed
// error that reaches a caller is fatal for the operation that produced it.
func IsFatal(err error) bool {
	return CodeOf(err) != ""
}

// Hints maps error codes to a suggested next step for CLI users
var Hints = map[ErrorCode]string{
	ProjectDecodeFailed: "Repair or remove the offending project file, then retry.",
	DuplicateProject:    "Two files declare the same project ID; keep only <id>.yaml.",
	ProjectFileMissing:  "The project file was removed while the registry was loaded; reload and retry.",
	StorageInit:         "Check that the database directory (FPM_DB_DIR) is writable.",
	ConfigInvalid:       "Run 'fpm config show' to inspect the effective configuration.",
}

// Hint returns the suggested next step for err, or "".
func Hint(err error) string {
	return Hints[CodeOf(err)]
}
