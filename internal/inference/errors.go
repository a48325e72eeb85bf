package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrorKind categorizes an inference failure.
type ErrorKind string

const (
	// RateLimited is an explicit rate-limit signal from the API. Retryable.
	RateLimited ErrorKind = "rate_limited"
	// ServiceUnavailable is a transient server/transport failure. Retryable.
	ServiceUnavailable ErrorKind = "service_unavailable"
	// AuthFailure is an invalid, expired, or under-privileged key. Not retryable.
	AuthFailure ErrorKind = "auth_failure"
	// InvalidResponse covers malformed requests and unusable responses,
	// including a missing required name field. Not retryable.
	InvalidResponse ErrorKind = "invalid_response"
	// Timeout is a deadline hit while waiting on the model. Retryable.
	Timeout ErrorKind = "timeout"
)

// Error is a classified inference failure. Attempts records how many calls
// were made before giving up.
type Error struct {
	Kind     ErrorKind
	Message  string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("inference %s: %s", e.Kind, e.Message)
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" (after %d attempts)", e.Attempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether another attempt may succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case RateLimited, ServiceUnavailable, Timeout:
		return true
	default:
		return false
	}
}

// classify maps a model-call error onto the failure taxonomy. API errors are
// classified by HTTP code; everything else falls back to message patterns.
func classify(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: Timeout, Message: "model call exceeded deadline", Err: err}
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return &Error{Kind: RateLimited, Message: "API rate limit exceeded", Err: err}
		case 500, 502, 503, 504:
			return &Error{Kind: ServiceUnavailable, Message: "model service unavailable", Err: err}
		case 401, 403:
			return &Error{Kind: AuthFailure, Message: "API key invalid, expired, or lacks permissions", Err: err}
		case 400:
			return &Error{Kind: InvalidResponse, Message: "malformed request rejected by API", Err: err}
		default:
			return &Error{Kind: ServiceUnavailable, Message: fmt.Sprintf("API error %d", apiErr.Code), Err: err}
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource exhausted"):
		return &Error{Kind: RateLimited, Message: "API rate limit exceeded", Err: err}
	case strings.Contains(msg, "api key not valid") ||
		strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "unauthorized"):
		return &Error{Kind: AuthFailure, Message: "API key rejected", Err: err}
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return &Error{Kind: Timeout, Message: "model call timed out", Err: err}
	default:
		return &Error{Kind: ServiceUnavailable, Message: "model call failed", Err: err}
	}
}
