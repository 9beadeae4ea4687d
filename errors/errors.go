package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with retryable and status derived from the code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: HTTPStatusFor(code),
		Retryable:  IsRetryableCode(code),
	}
}

// --- Constructors ---

// InvalidParameter reports a parameter outside its allowed domain.
func InvalidParameter(param, reason string) *AppError {
	return New(ErrCodeInvalidParameter, fmt.Sprintf("invalid %s: %s", param, reason)).
		WithDetail("parameter", param)
}

// ModelNotFound reports a lookup miss in the model registry.
func ModelNotFound(name string) *AppError {
	return New(ErrCodeModelNotFound, fmt.Sprintf("model %q is not registered", name)).
		WithDetail("model", name)
}

// DuplicateModel reports a second registration under an existing name.
func DuplicateModel(name string) *AppError {
	return New(ErrCodeDuplicateModel, fmt.Sprintf("model %q is already registered", name)).
		WithDetail("model", name)
}

// CapabilityNotSupported reports a capability tag outside the supported set.
func CapabilityNotSupported(capability string) *AppError {
	return New(ErrCodeCapabilityNotSupported, fmt.Sprintf("capability %q is not supported", capability)).
		WithDetail("capability", capability)
}

// BackendUnavailable reports a transport-level failure reaching a backend.
func BackendUnavailable(model string, cause error) *AppError {
	return New(ErrCodeBackendUnavailable, fmt.Sprintf("backend for %s is unavailable", model)).
		WithDetail("model", model).
		WithCause(cause)
}

// BackendResponseInvalid reports a response that could not be parsed.
func BackendResponseInvalid(model string, cause error) *AppError {
	return New(ErrCodeBackendResponseInvalid, fmt.Sprintf("backend for %s returned an invalid response", model)).
		WithDetail("model", model).
		WithCause(cause)
}

// BackendRejected reports an explicit error returned by the backend.
func BackendRejected(model, reason string) *AppError {
	return New(ErrCodeBackendRejected, fmt.Sprintf("backend for %s rejected the request: %s", model, reason)).
		WithDetail("model", model)
}

// DecodeFailed reports generated text that does not match the requested shape.
func DecodeFailed(model string, cause error) *AppError {
	return New(ErrCodeDecodeFailed, fmt.Sprintf("output of %s could not be decoded", model)).
		WithDetail("model", model).
		WithCause(cause)
}

// Unauthorized creates a new AppError for unauthorized access.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return New(ErrCodeUnauthorized, reason)
}

// Internal creates a new AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred.").WithCause(cause)
}

// --- Inspection ---

// CodeOf returns the code of the first AppError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// Is reports whether err's chain contains an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
