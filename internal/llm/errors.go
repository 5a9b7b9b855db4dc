package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies a provider failure.
type Kind int

const (
	KindUnavailable Kind = iota // network failure or 5xx
	KindRateLimit               // 429
	KindAuth                    // 401 or 403; retrying cannot help
	KindInvalid                 // output does not match the schema
	KindTruncated               // output hit MaxTokens
)

func (k Kind) String() string {
	switch k {
	case KindRateLimit:
		return "rate limited"
	case KindAuth:
		return "authentication failed"
	case KindInvalid:
		return "invalid response"
	case KindTruncated:
		return "response truncated"
	default:
		return "provider unavailable"
	}
}

// Error is the error type returned by every backend.
type Error struct {
	Kind    Kind
	Backend string

	// RetryAfter is the server-requested wait for KindRateLimit, if any.
	RetryAfter time.Duration
	// Content holds the rejected output for KindInvalid and KindTruncated.
	Content json.RawMessage

	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Backend, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or false when err is not an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// classifyStatus maps an HTTP status from a backend SDK error to an *Error.
func classifyStatus(backend string, status int, err error) *Error {
	e := &Error{Kind: KindUnavailable, Backend: backend, Err: err}
	switch {
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimit
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindAuth
	}
	return e
}

// transportError wraps an SDK error that carried no HTTP status. Context
// errors pass through unchanged.
func transportError(backend string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &Error{Kind: KindUnavailable, Backend: backend, Err: err}
}
