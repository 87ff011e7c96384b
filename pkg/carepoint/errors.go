package carepoint

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorKind classifies an APIError.
type ErrorKind string

// Error kinds surfaced by the client.
const (
	// KindAuthenticationRequired means no credentials were available where required.
	KindAuthenticationRequired ErrorKind = "authentication_required"
	// KindAuthenticationFailed means credentials were present but rejected.
	KindAuthenticationFailed ErrorKind = "authentication_failed"
	// KindNotFound is a 404 on a mutation.
	KindNotFound ErrorKind = "not_found"
	// KindNetworkUnavailable is a transport failure after the cold-start retry.
	KindNetworkUnavailable ErrorKind = "network_unavailable"
	// KindTimeout is an attempt that exceeded its deadline.
	KindTimeout ErrorKind = "timeout"
	// KindServerError is any other non-2xx response.
	KindServerError ErrorKind = "server_error"
)

// Default messages.
const (
	MessageAuthenticationRequired = "Authentication credentials were not provided."
	MessageAuthenticationFailed   = "Authentication failed. Please log in again."
	MessageNotFound               = "Resource not found"
	MessageNetworkUnavailable     = "Unable to connect to the server. The server may be starting up. Please try again in a moment."
	MessageTimeout                = "Request timeout. The server may be starting up. Please try again in a moment."
	MessageCancelled              = "Request cancelled."
)

// APIError is the single error shape returned by the client, whatever the
// underlying HTTP status or transport failure. It serialises as
// {"error": true, "message": ..., "details": {...}}.
type APIError struct {
	IsError    bool                   `json:"error"             yaml:"error"`
	Message    string                 `json:"message"           yaml:"message"`
	Details    map[string]interface{} `json:"details"           yaml:"details,omitempty"`
	Kind       ErrorKind              `json:"kind"              yaml:"kind"`
	StatusCode int                    `json:"status,omitempty"  yaml:"status,omitempty"`

	cause error
}

// NewAPIError creates an APIError of the given kind.
func NewAPIError(kind ErrorKind, statusCode int, message string, details map[string]interface{}) *APIError {
	if details == nil {
		details = map[string]interface{}{}
	}

	return &APIError{
		IsError:    true,
		Message:    message,
		Details:    details,
		Kind:       kind,
		StatusCode: statusCode,
	}
}

// WithCause attaches the underlying error, which stays reachable through errors.Is/As.
func (e *APIError) WithCause(cause error) *APIError {
	e.cause = cause

	return e
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status: %d, kind: %s)", e.Message, e.StatusCode, e.Kind)
	}

	return fmt.Sprintf("%s (kind: %s)", e.Message, e.Kind)
}

// Unwrap returns the underlying cause, if any.
func (e *APIError) Unwrap() error {
	return e.cause
}

// Is matches sentinel errors by kind, so errors.Is(err, ErrNotFound) works
// for any not-found APIError regardless of message.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}

	return t.Kind == e.Kind
}

// MarshalJSON keeps the "error" flag set even on zero values built by hand.
func (e *APIError) MarshalJSON() ([]byte, error) {
	type alias APIError

	out := alias(*e)
	out.IsError = true

	if out.Details == nil {
		out.Details = map[string]interface{}{}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal API error: %w", err)
	}

	return data, nil
}

// Sentinel errors for errors.Is comparisons.
var (
	ErrAuthenticationRequired = &APIError{Kind: KindAuthenticationRequired, Message: MessageAuthenticationRequired}
	ErrAuthenticationFailed   = &APIError{Kind: KindAuthenticationFailed, Message: MessageAuthenticationFailed}
	ErrNotFound               = &APIError{Kind: KindNotFound, Message: MessageNotFound}
	ErrNetworkUnavailable     = &APIError{Kind: KindNetworkUnavailable, Message: MessageNetworkUnavailable}
	ErrTimeout                = &APIError{Kind: KindTimeout, Message: MessageTimeout}
	ErrServerError            = &APIError{Kind: KindServerError, Message: "server error"}
)

// KindOf returns the kind of err, or "" when err is not an APIError.
func KindOf(err error) ErrorKind {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}

	return ""
}

// IsAuthenticationRequired checks if the error means no credentials were available.
func IsAuthenticationRequired(err error) bool {
	return KindOf(err) == KindAuthenticationRequired
}

// IsAuthenticationFailed checks if the error means the server rejected the credentials.
func IsAuthenticationFailed(err error) bool {
	return KindOf(err) == KindAuthenticationFailed
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsNetworkUnavailable checks if the error is a transport failure.
func IsNetworkUnavailable(err error) bool {
	return KindOf(err) == KindNetworkUnavailable
}

// IsTimeout checks if the error is a timeout.
func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}
