package llm

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestStatusError(t *testing.T) {
	cause := errors.New("upstream")
	tests := []struct {
		status int
		kind   Kind
	}{
		{0, KindUnavailable},
		{http.StatusBadRequest, KindRejected},
		{http.StatusUnauthorized, KindRejected},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusInternalServerError, KindUnavailable},
		{529, KindUnavailable},
	}
	for _, tt := range tests {
		e := statusError("anthropic", tt.status, 3*time.Second, cause)
		if e.Kind != tt.kind {
			t.Errorf("status %d: kind = %s, want %s", tt.status, e.Kind, tt.kind)
		}
		if !errors.Is(e, cause) {
			t.Errorf("status %d: cause lost", tt.status)
		}
		if tt.kind == KindRateLimited && e.RetryAfter != 3*time.Second {
			t.Errorf("status %d: retry after = %s", tt.status, e.RetryAfter)
		}
		if tt.kind != KindRateLimited && e.RetryAfter != 0 {
			t.Errorf("status %d: retry after set on %s", tt.status, e.Kind)
		}
	}
}

func TestError_Message(t *testing.T) {
	e := &Error{Provider: "openai", Kind: KindRateLimited, Status: 429, Err: errors.New("slow down")}
	if got, want := e.Error(), "openai: rate limited (status 429): slow down"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}

	e = &Error{Provider: "gemini", Kind: KindUnavailable}
	if got, want := e.Error(), "gemini: unavailable"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"30", 30 * time.Second},
		{" 2 ", 2 * time.Second},
		{"", 0},
		{"-1", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		h := http.Header{}
		h.Set("Retry-After", tt.value)
		if got := parseRetryAfter(h); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %s, want %s", tt.value, got, tt.want)
		}
	}
	if got := parseRetryAfter(nil); got != 0 {
		t.Errorf("parseRetryAfter(nil) = %s", got)
	}
}

func TestIsKind(t *testing.T) {
	err := errors.Join(errors.New("wrapped"), &Error{Kind: KindTruncated})
	if !IsKind(err, KindTruncated) || IsKind(err, KindInvalidOutput) {
		t.Fatal("IsKind mismatch")
	}
	if IsKind(errors.New("plain"), KindUnavailable) {
		t.Fatal("plain errors have no kind")
	}
}
