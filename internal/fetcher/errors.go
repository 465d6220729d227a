package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"financehub/internal/buffer"
)

// ErrorType represents the category of error that occurred during a fetch operation
type ErrorType string

const (
	// ErrorTypeNetwork indicates a network-level error (connection refused, DNS, etc.)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit indicates the request was rejected due to rate limiting (HTTP 429)
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeServer indicates a server error (HTTP 5xx)
	ErrorTypeServer ErrorType = "server"
	// ErrorTypeClient indicates a client error (HTTP 4xx except 429)
	ErrorTypeClient ErrorType = "client"
	// ErrorTypeTimeout indicates the request timed out
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeParse indicates the body arrived but is not valid JSON
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeMissingField indicates valid JSON without the expected shape
	ErrorTypeMissingField ErrorType = "missing_field"
	// ErrorTypeOverflow indicates a fixed response buffer was too small
	ErrorTypeOverflow ErrorType = "overflow"
	// ErrorTypeOutOfMemory indicates a growable response buffer hit its budget
	ErrorTypeOutOfMemory ErrorType = "out_of_memory"
	// ErrorTypePanic indicates the fetcher panicked and was recovered
	ErrorTypePanic ErrorType = "panic"
	// ErrorTypeUnknown indicates an error of unknown type
	ErrorTypeUnknown ErrorType = "unknown"
)

// FetchError represents a structured error from a fetch operation
type FetchError struct {
	Type       ErrorType
	Retryable  bool
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s error: %s", e.Type, e.Message)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// IsTransport reports whether the exchange itself failed, as opposed to the
// content of a completed exchange being unusable.
func (e *FetchError) IsTransport() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServer,
		ErrorTypeClient, ErrorTypeTimeout, ErrorTypeUnknown:
		return true
	}
	return false
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Type
	}
	return ErrorTypeUnknown
}

// NewNetworkError creates a network error
func NewNetworkError(cause error) *FetchError {
	return &FetchError{
		Type:      ErrorTypeNetwork,
		Retryable: true,
		Message:   "network request failed",
		Cause:     cause,
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(statusCode int) *FetchError {
	return &FetchError{
		Type:       ErrorTypeRateLimit,
		Retryable:  true,
		StatusCode: statusCode,
		Message:    "rate limit exceeded",
	}
}

// NewServerError creates a server error
func NewServerError(statusCode int) *FetchError {
	return &FetchError{
		Type:       ErrorTypeServer,
		Retryable:  true,
		StatusCode: statusCode,
		Message:    "server returned an error",
	}
}

// NewClientError creates a client error
func NewClientError(statusCode int, message string) *FetchError {
	return &FetchError{
		Type:       ErrorTypeClient,
		Retryable:  false,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(cause error) *FetchError {
	return &FetchError{
		Type:      ErrorTypeTimeout,
		Retryable: true,
		Message:   "request timed out",
		Cause:     cause,
	}
}

// NewParseError creates an error for a body that could not be parsed
func NewParseError(cause error) *FetchError {
	return &FetchError{
		Type:    ErrorTypeParse,
		Message: "failed to parse response body",
		Cause:   cause,
	}
}

// NewMissingFieldError creates an error for a document lacking an expected field
func NewMissingFieldError(field string) *FetchError {
	return &FetchError{
		Type:    ErrorTypeMissingField,
		Message: fmt.Sprintf("no %q array found in response", field),
	}
}

// NewPanicError wraps a recovered panic
func NewPanicError(cause error) *FetchError {
	return &FetchError{
		Type:    ErrorTypePanic,
		Message: "fetcher panicked",
		Cause:   cause,
	}
}

// NewBufferError maps an accumulator failure to its FetchError
func NewBufferError(cause error) *FetchError {
	switch {
	case errors.Is(cause, buffer.ErrOverflow):
		return &FetchError{Type: ErrorTypeOverflow, Message: "response does not fit the buffer", Cause: cause}
	case errors.Is(cause, buffer.ErrOutOfMemory):
		return &FetchError{Type: ErrorTypeOutOfMemory, Message: "response exceeds the memory budget", Cause: cause}
	default:
		return &FetchError{Type: ErrorTypeUnknown, Message: "response buffer failed", Cause: cause}
	}
}

// ClassifyTransportError maps an error from executing a request to a
// FetchError. Deadlines and net timeouts become timeout errors; everything
// else is a network error.
func ClassifyTransportError(err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewTimeoutError(err)
	}
	return NewNetworkError(err)
}

// maxBodyDetail bounds how much of an error response body is kept in the
// message.
const maxBodyDetail = 256

// ClassifyHTTPResponse classifies a non-2xx response like ClassifyHTTPError
// and appends the start of the body, which usually names the API's error code.
func ClassifyHTTPResponse(statusCode int, body []byte) *FetchError {
	fe := ClassifyHTTPError(statusCode)

	detail := strings.Join(strings.Fields(string(body)), " ")
	if detail == "" {
		return fe
	}
	if len(detail) > maxBodyDetail {
		detail = strings.ToValidUTF8(detail[:maxBodyDetail], "") + "..."
	}
	fe.Message += ": " + detail
	return fe
}

// ClassifyHTTPError classifies an HTTP status code into an appropriate FetchError
func ClassifyHTTPError(statusCode int) *FetchError {
	switch {
	case statusCode == 429:
		return NewRateLimitError(statusCode)
	case statusCode >= 500:
		return NewServerError(statusCode)
	case statusCode >= 400:
		return NewClientError(statusCode, fmt.Sprintf("HTTP %d", statusCode))
	default:
		return &FetchError{
			Type:       ErrorTypeUnknown,
			Retryable:  false,
			StatusCode: statusCode,
			Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		}
	}
}
