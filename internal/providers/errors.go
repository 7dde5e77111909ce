package providers

import (
	"context"
	"errors"
	"strings"
)

type ErrorType string

const (
	ErrorQuota       ErrorType = "quota"
	ErrorRate        ErrorType = "rate"
	ErrorTransient   ErrorType = "transient"
	ErrorPermanent   ErrorType = "permanent"
	ErrorContext     ErrorType = "context"
	ErrorUnavailable ErrorType = "unavailable"
)

// ErrUnavailable marks a provider that cannot be reached or is not configured.
var ErrUnavailable = errors.New("provider unavailable")

func ClassifyError(err error) ErrorType {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrUnavailable) {
		return ErrorUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTransient
	}
	e := strings.ToLower(err.Error())
	switch {
	case strings.Contains(e, "quota"), strings.Contains(e, "credit"), strings.Contains(e, "insufficient_quota"), strings.Contains(e, "resource_exhausted"):
		return ErrorQuota
	case strings.Contains(e, "rate limit"), strings.Contains(e, "rate_limit"), strings.Contains(e, "429"), strings.Contains(e, "too many requests"):
		return ErrorRate
	case strings.Contains(e, "context length"), strings.Contains(e, "too long"), strings.Contains(e, "context window"):
		return ErrorContext
	case strings.Contains(e, "timeout"), strings.Contains(e, "temporarily"), strings.Contains(e, "503"), strings.Contains(e, "502"):
		return ErrorTransient
	case strings.Contains(e, "unavailable"), strings.Contains(e, "connection refused"), strings.Contains(e, "no such host"), strings.Contains(e, "key missing"):
		return ErrorUnavailable
	default:
		return ErrorPermanent
	}
}

// IsUnavailable reports whether err means the provider could not serve the
// request at all, as opposed to rejecting this particular request.
func IsUnavailable(err error) bool {
	switch ClassifyError(err) {
	case ErrorQuota, ErrorRate, ErrorTransient, ErrorUnavailable:
		return true
	default:
		return false
	}
}
