package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/astrofleet/skybook/internal/models"
)

// The backend returns loosely-typed error bodies (message / error /
// error_description, depending on the endpoint). FromResponse normalizes
// them into the closed set of error types below before they reach any
// business logic.

// ValidationError is malformed or missing input, resolved locally where
// possible or reported by the backend as a 400-class response.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

// AuthError covers invalid credentials and expired or invalid tokens
// (401/403). Reason is safe to show to the user.
type AuthError struct {
	StatusCode int
	Reason     string
}

func (e *AuthError) Error() string {
	return e.Reason
}

// NotFoundError is a 404 for a named resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// RateLimitedError is a 429. RetryAfter is zero when the server gave no hint.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited, retry later"
}

// NetworkError means no response was received. It must never be conflated
// with AuthError: a timeout does not trigger a token refresh.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a 5xx response.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error (%d)", e.StatusCode)
}

// LoginRequiredError is surfaced when a protected call cannot proceed
// without re-authentication: no stored session, or the coordinated token
// refresh failed and the session was cleared. Destination carries the
// original request path so the caller can resume after signing in.
type LoginRequiredError struct {
	Destination string
	Err         error
}

func (e *LoginRequiredError) Error() string {
	return "sign in required"
}

func (e *LoginRequiredError) Unwrap() error { return e.Err }

// errorBody is the union of error shapes the backend emits.
type errorBody struct {
	Error            string `json:"error"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	Field            string `json:"field"`
	From             string `json:"from"`
	To               string `json:"to"`
}

func (b errorBody) text() string {
	switch {
	case b.Message != "":
		return b.Message
	case b.ErrorDescription != "":
		return b.ErrorDescription
	default:
		return b.Error
	}
}

// FromResponse maps a non-2xx response onto the error taxonomy. The body is
// consumed but not closed.
func FromResponse(resp *http.Response) error {
	var body errorBody
	if data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024)); err == nil {
		_ = json.Unmarshal(data, &body)
	}

	msg := body.text()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if msg == "" {
			msg = "invalid or expired credentials"
		}
		return &AuthError{StatusCode: resp.StatusCode, Reason: msg}
	case resp.StatusCode == http.StatusNotFound:
		resource := body.Error
		if resource == "" {
			resource = "resource"
		}
		return &NotFoundError{Resource: resource}
	case resp.StatusCode == http.StatusTooManyRequests:
		var retryAfter time.Duration
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			retryAfter = time.Duration(secs) * time.Second
		}
		return &RateLimitedError{RetryAfter: retryAfter}
	case resp.StatusCode == http.StatusConflict && body.Error == "invalid_transition":
		entity := body.Field
		if entity == "" {
			entity = "booking"
		}
		return &models.InvalidTransitionError{Entity: entity, From: body.From, To: body.To}
	case resp.StatusCode >= 500:
		return &ServerError{StatusCode: resp.StatusCode, Message: msg}
	default:
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &ValidationError{Field: body.Field, Message: msg}
	}
}

// IsRetryable reports whether an error is worth retrying with backoff.
// Only transport-level failures and 5xx responses qualify; auth failures,
// validation errors and state-machine misuse are permanent.
func IsRetryable(err error) bool {
	var netErr *NetworkError
	var srvErr *ServerError
	return errors.As(err, &netErr) || errors.As(err, &srvErr)
}
