package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Kind classifies a failed provider call.
type Kind int

const (
	// KindUnavailable covers network failures, timeouts and 5xx answers.
	KindUnavailable Kind = iota
	// KindRateLimited is a 429 from the provider.
	KindRateLimited
	// KindRejected is any other 4xx: a bad key, an unknown model, a bad request.
	KindRejected
	// KindInvalidOutput is output that is not JSON matching the schema.
	KindInvalidOutput
	// KindTruncated is output cut off at MaxTokens before it became valid.
	KindTruncated
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate limited"
	case KindRejected:
		return "rejected"
	case KindInvalidOutput:
		return "invalid output"
	case KindTruncated:
		return "truncated output"
	default:
		return "unavailable"
	}
}

// Error is a failed provider call.
type Error struct {
	Provider string
	Kind     Kind

	// Status is the HTTP status the provider answered with, or 0 when no
	// answer arrived.
	Status int

	// RetryAfter is the provider's Retry-After hint on rate limits.
	RetryAfter time.Duration

	// Output is the raw model output for KindInvalidOutput and KindTruncated.
	Output json.RawMessage

	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Provider, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err carries an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// statusError classifies an SDK error that carries an HTTP status.
func statusError(provider string, status int, retryAfter time.Duration, err error) *Error {
	kind := KindRejected
	switch {
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status == 0, status >= 500:
		kind = KindUnavailable
	}
	e := &Error{Provider: provider, Kind: kind, Status: status, Err: err}
	if kind == KindRateLimited {
		e.RetryAfter = retryAfter
	}
	return e
}

// parseRetryAfter reads the delay-seconds form of Retry-After.
func parseRetryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After")))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
