package github

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound matches any APIError with status 404.
var ErrNotFound = errors.New("not found")

// APIError represents a non-2xx response from the GitHub API.
type APIError struct {
	StatusCode       int            `json:"-"`
	Message          string         `json:"message,omitempty"`
	DocumentationURL string         `json:"documentation_url,omitempty"`
	Raw              map[string]any `json:"-"`
	RequestID        string         `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		if e.RequestID != "" {
			return fmt.Sprintf("github api error: status=%d request_id=%s message=%s", e.StatusCode, e.RequestID, e.Message)
		}
		return fmt.Sprintf("github api error: status=%d message=%s", e.StatusCode, e.Message)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("github api error: status=%d request_id=%s", e.StatusCode, e.RequestID)
	}
	return fmt.Sprintf("github api error: status=%d", e.StatusCode)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}

// AuthError indicates a rejected or under-scoped token (401/403).
type AuthError struct{ *APIError }

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.APIError.Error())
}

func (e *AuthError) Unwrap() error { return e.APIError }

// RateLimitError indicates primary or secondary rate limiting.
type RateLimitError struct {
	*APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: wait about %ds before retrying: %s", int(e.RetryAfter.Seconds()), e.APIError.Error())
	}
	return fmt.Sprintf("rate limited: %s", e.APIError.Error())
}

func (e *RateLimitError) Unwrap() error { return e.APIError }

// ConflictError indicates the write was refused, typically because the sha
// was stale or missing for an existing file (409/422).
type ConflictError struct{ *APIError }

func (e *ConflictError) Error() string { return fmt.Sprintf("conflict: %s", e.APIError.Error()) }

func (e *ConflictError) Unwrap() error { return e.APIError }

// ServerError indicates 5xx responses.
type ServerError struct{ *APIError }

func (e *ServerError) Error() string { return fmt.Sprintf("github error: %s", e.APIError.Error()) }

func (e *ServerError) Unwrap() error { return e.APIError }

// TransportError wraps failures below HTTP: DNS, connection, timeouts.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
