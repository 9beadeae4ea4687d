package httpclient

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorCode classifies client failures.
type ErrorCode int

const (
	// ErrCodeTimeout is a request or connect timeout.
	ErrCodeTimeout ErrorCode = iota
	// ErrCodeConnection is a transport failure (refused, DNS, reset).
	ErrCodeConnection
	// ErrCodeAuth is 401 or 403.
	ErrCodeAuth
	// ErrCodeNotFound is 404.
	ErrCodeNotFound
	// ErrCodeRateLimit is 429.
	ErrCodeRateLimit
	// ErrCodeValidation is any other 4xx, or a request that could not be built.
	ErrCodeValidation
	// ErrCodeServer is 5xx.
	ErrCodeServer
	// ErrCodeOverloaded means the local circuit breaker or bulkhead refused the call.
	ErrCodeOverloaded
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeAuth:
		return "auth"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeRateLimit:
		return "rate_limit"
	case ErrCodeValidation:
		return "validation"
	case ErrCodeServer:
		return "server"
	case ErrCodeOverloaded:
		return "overloaded"
	default:
		return "unknown"
	}
}

// Error is a classified client error.
type Error struct {
	// StatusCode is 0 for transport-level errors.
	StatusCode int
	Code       ErrorCode
	Message    string
	Retryable  bool
	// Body is the response body, if any.
	Body []byte
	Err  error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsRetryable lets resilience.DefaultRetryIf read the classification.
func (e *Error) IsRetryable() bool { return e.Retryable }

// NewTimeoutError wraps a timeout.
func NewTimeoutError(err error) *Error {
	return &Error{Code: ErrCodeTimeout, Message: err.Error(), Retryable: true, Err: err}
}

// NewConnectionError wraps a transport failure.
func NewConnectionError(err error) *Error {
	return &Error{Code: ErrCodeConnection, Message: err.Error(), Retryable: true, Err: err}
}

// NewValidationError reports a request that could not be built or was refused as malformed.
func NewValidationError(msg string) *Error {
	return &Error{Code: ErrCodeValidation, Message: msg}
}

func newOverloadedError(err error) *Error {
	return &Error{Code: ErrCodeOverloaded, Message: err.Error(), Err: err}
}

// transportError classifies an error returned by http.Client.Do.
func transportError(err error) *Error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return NewTimeoutError(err)
	}
	return NewConnectionError(err)
}

// ClassifyStatusCode converts a status into an error. It returns nil for 2xx.
func ClassifyStatusCode(statusCode int, body []byte) *Error {
	e := &Error{StatusCode: statusCode, Message: http.StatusText(statusCode), Body: body}
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		e.Code = ErrCodeAuth
	case statusCode == http.StatusNotFound:
		e.Code = ErrCodeNotFound
	case statusCode == http.StatusTooManyRequests:
		e.Code = ErrCodeRateLimit
		e.Retryable = true
	case statusCode >= 400 && statusCode < 500:
		e.Code = ErrCodeValidation
	case statusCode >= 500:
		e.Code = ErrCodeServer
		e.Retryable = true
	default:
		e.Code = ErrCodeServer
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("HTTP %d", statusCode)
	}
	return e
}

// AsError extracts a classified error.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// IsTimeout reports a timeout.
func IsTimeout(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code == ErrCodeTimeout
}

// IsRateLimit reports a 429.
func IsRateLimit(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code == ErrCodeRateLimit
}

// IsRetryable reports whether err is a classified retryable error.
func IsRetryable(err error) bool {
	e, ok := AsError(err)
	return ok && e.Retryable
}
