package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a pastedock error code.
type ErrorCode string

const (
	ErrInvalidRequest        ErrorCode = "INVALID_REQUEST"         // 400
	ErrInvalidInput          ErrorCode = "INVALID_INPUT"           // 400
	ErrNotFound              ErrorCode = "NOT_FOUND"               // 404
	ErrFileMissing           ErrorCode = "FILE_MISSING"            // 410
	ErrInvalidFilePayload    ErrorCode = "INVALID_FILE_PAYLOAD"    // 422
	ErrPayloadReadFailed     ErrorCode = "PAYLOAD_READ_FAILED"     // 500
	ErrPasteboardWriteFailed ErrorCode = "PASTEBOARD_WRITE_FAILED" // 500
	ErrStoreFailed           ErrorCode = "STORE_FAILED"            // 500
	ErrInternal              ErrorCode = "INTERNAL"                // 500
)

// ClipError represents a structured error with code, status, and details.
type ClipError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *ClipError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ClipError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *ClipError {
	return &ClipError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidInput creates a 400 error for a capture payload that cannot be classified.
func NewInvalidInput(msg string) *ClipError {
	return &ClipError{
		Code:    ErrInvalidInput,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a history item cannot be found.
func NewNotFound(id string) *ClipError {
	return &ClipError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("item not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileMissing creates a 410 error for a file reference that no longer exists on disk.
// path is the first missing file.
func NewFileMissing(path string) *ClipError {
	return &ClipError{
		Code:    ErrFileMissing,
		Status:  410,
		Message: fmt.Sprintf("referenced file is missing: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewInvalidFilePayload creates a 422 error for an unreadable or empty file manifest.
func NewInvalidFilePayload(path string, cause error) *ClipError {
	msg := fmt.Sprintf("invalid file payload: %s", path)
	if cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, cause)
	}
	return &ClipError{
		Code:    ErrInvalidFilePayload,
		Status:  422,
		Message: msg,
		Details: map[string]any{"payload_path": path},
		cause:   cause,
	}
}

// NewPayloadReadFailed creates a 500 error when a stored payload blob cannot be read.
func NewPayloadReadFailed(path string, cause error) *ClipError {
	return &ClipError{
		Code:    ErrPayloadReadFailed,
		Status:  500,
		Message: fmt.Sprintf("failed to read payload: %s", path),
		Details: map[string]any{"payload_path": path},
		cause:   cause,
	}
}

// NewPasteboardWriteFailed creates a 500 error when the system pasteboard rejects a write.
func NewPasteboardWriteFailed(cause error) *ClipError {
	msg := "failed to write to pasteboard"
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &ClipError{
		Code:    ErrPasteboardWriteFailed,
		Status:  500,
		Message: msg,
		cause:   cause,
	}
}

// NewStoreFailed creates a 500 error for a persistence-layer failure.
// op names the store operation ("save", "search", ...).
func NewStoreFailed(op string, cause error) *ClipError {
	msg := fmt.Sprintf("store %s failed", op)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &ClipError{
		Code:    ErrStoreFailed,
		Status:  500,
		Message: msg,
		Details: map[string]any{"op": op},
		cause:   cause,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *ClipError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &ClipError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if err (or anything it wraps) is a ClipError with the given code.
func Is(err error, code ErrorCode) bool {
	var cErr *ClipError
	if stderrors.As(err, &cErr) {
		return cErr.Code == code
	}
	return false
}

// As extracts the first ClipError in err's chain.
func As(err error) (*ClipError, bool) {
	var cErr *ClipError
	if stderrors.As(err, &cErr) {
		return cErr, true
	}
	return nil, false
}
