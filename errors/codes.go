package errors

import "net/http"

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Parameter errors
const (
	// ErrCodeInvalidParameter indicates a caller-supplied parameter is out of domain.
	ErrCodeInvalidParameter ErrorCode = "INVALID_PARAMETER"
)

// Resolution errors
const (
	// ErrCodeModelNotFound indicates no model is registered under the requested name.
	ErrCodeModelNotFound ErrorCode = "MODEL_NOT_FOUND"
	// ErrCodeDuplicateModel indicates a model with the same name is already registered.
	ErrCodeDuplicateModel ErrorCode = "DUPLICATE_MODEL"
	// ErrCodeCapabilityNotSupported indicates the capability tag is not served by this deployment.
	ErrCodeCapabilityNotSupported ErrorCode = "CAPABILITY_NOT_SUPPORTED"
)

// Backend errors
const (
	// ErrCodeBackendUnavailable indicates a network or transport failure talking to a backend.
	ErrCodeBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	// ErrCodeBackendResponseInvalid indicates the backend response could not be parsed.
	ErrCodeBackendResponseInvalid ErrorCode = "BACKEND_RESPONSE_INVALID"
	// ErrCodeBackendRejected indicates the backend returned an explicit error.
	ErrCodeBackendRejected ErrorCode = "BACKEND_REJECTED"
)

// Typed generation errors
const (
	// ErrCodeDecodeFailed indicates generated text is not valid data of the requested shape.
	ErrCodeDecodeFailed ErrorCode = "DECODE_FAILED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeUnauthorized indicates the request is missing valid credentials.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
)

// Routing errors
const (
	// ErrCodeNotFound indicates no HTTP route matches the request.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeMethodNotAllowed indicates the route exists for other methods.
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeBackendUnavailable: true,
}

var httpStatuses = map[ErrorCode]int{
	ErrCodeInvalidParameter:       http.StatusBadRequest,
	ErrCodeModelNotFound:          http.StatusNotFound,
	ErrCodeDuplicateModel:         http.StatusConflict,
	ErrCodeCapabilityNotSupported: http.StatusBadRequest,
	ErrCodeBackendUnavailable:     http.StatusServiceUnavailable,
	ErrCodeBackendResponseInvalid: http.StatusBadGateway,
	ErrCodeBackendRejected:        http.StatusBadGateway,
	ErrCodeDecodeFailed:           http.StatusUnprocessableEntity,
	ErrCodeUnauthorized:           http.StatusUnauthorized,
	ErrCodeInternal:               http.StatusInternalServerError,
	ErrCodeNotFound:               http.StatusNotFound,
	ErrCodeMethodNotAllowed:       http.StatusMethodNotAllowed,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// HTTPStatusFor returns the recommended HTTP status for a code.
func HTTPStatusFor(code ErrorCode) int {
	if s, ok := httpStatuses[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}
