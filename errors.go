package graphstream

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
// These can be checked with errors.Is().
var (
	// ErrMissingBody indicates the response carried no readable body stream.
	ErrMissingBody = errors.New("graphstream: response body is empty")

	// ErrUnauthorized indicates the bearer token is missing, malformed,
	// or rejected by the server.
	ErrUnauthorized = errors.New("graphstream: unauthorized")

	// ErrServerUnavailable indicates the graph server is down or unreachable.
	ErrServerUnavailable = errors.New("graphstream: server unavailable")

	// ErrDuplicateMessageID indicates an append would violate the
	// id-uniqueness invariant of a conversation.
	ErrDuplicateMessageID = errors.New("graphstream: duplicate message id")
)

// TransportError represents a failed initiating request: the server
// answered with a non-success status before any event could stream.
type TransportError struct {
	StatusCode int    // HTTP status code of the response
	Body       string // Response body text, read for diagnostics
	Err        error  // Wrapped sentinel (ErrUnauthorized, ErrServerUnavailable) or nil
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("graphstream: request failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// newTransportError builds a TransportError, mapping well-known status
// codes onto sentinel errors.
func newTransportError(statusCode int, body string) *TransportError {
	te := &TransportError{StatusCode: statusCode, Body: body}
	switch {
	case statusCode == 401 || statusCode == 403:
		te.Err = ErrUnauthorized
	case statusCode >= 500:
		te.Err = ErrServerUnavailable
	}
	return te
}

// DecodeError represents a single stream line that failed JSON parsing.
// Decode errors are always recovered locally: the line is dropped, the
// sequence continues. They surface only through logging and the decoder's
// skip counter.
type DecodeError struct {
	Line string // The offending line, trimmed
	Err  error  // The underlying JSON error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("graphstream: failed to parse stream line %q: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsTransportError checks if an error is a failed initiating request.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsAuthError checks if an error is related to authentication.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrUnauthorized) {
		return true
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode == 401 || te.StatusCode == 403
	}

	return false
}

// IsRetryable checks if an error is potentially retryable.
// Server-side failures are; client-side request errors are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrServerUnavailable) {
		return true
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode == 429 || te.StatusCode >= 500
	}

	return false
}
