package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	cases := map[string]ErrorType{
		"insufficient_quota":           ErrorQuota,
		"429 rate":                     ErrorRate,
		"groq: rate limit reached":     ErrorRate,
		"context too long":             ErrorContext,
		"timeout":                      ErrorTransient,
		"openai generate error 503: x": ErrorTransient,
		"dial tcp: connection refused": ErrorUnavailable,
		"bad request":                  ErrorPermanent,
	}
	for msg, want := range cases {
		if got := ClassifyError(errors.New(msg)); got != want {
			t.Fatalf("classify %q: got %s want %s", msg, got, want)
		}
	}
}

func TestClassifyWrappedSentinels(t *testing.T) {
	if got := ClassifyError(fmt.Errorf("gemini: %w", ErrUnavailable)); got != ErrorUnavailable {
		t.Fatalf("got %s", got)
	}
	if got := ClassifyError(fmt.Errorf("call: %w", context.DeadlineExceeded)); got != ErrorTransient {
		t.Fatalf("got %s", got)
	}
	if ClassifyError(nil) != "" {
		t.Fatalf("nil should classify empty")
	}
}

func TestIsUnavailable(t *testing.T) {
	if !IsUnavailable(errors.New("429 too many requests")) {
		t.Fatalf("rate limit should be unavailable")
	}
	if IsUnavailable(errors.New("invalid argument")) {
		t.Fatalf("permanent should not be unavailable")
	}
}
