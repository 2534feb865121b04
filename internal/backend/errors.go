package backend

import (
	"fmt"
	"time"
)

// ErrTransport indicates the request never produced an HTTP response.
type ErrTransport struct {
	Op  string
	Err error
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *ErrTransport) Unwrap() error { return e.Err }

// ErrStatus indicates a non-2xx response.
type ErrStatus struct {
	Op      string
	Code    int
	Message string // the service's "error" field, if any
}

func (e *ErrStatus) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.Code)
}

// ErrRateLimit indicates the service answered 429.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        *ErrStatus
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrMalformedResponse indicates a 2xx response whose body has the wrong shape.
type ErrMalformedResponse struct {
	Op   string
	Body []byte
	Err  error
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *ErrMalformedResponse) Unwrap() error { return e.Err }
