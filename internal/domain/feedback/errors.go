package feedback

import (
	"context"
	"errors"
)

// Sentinel kinds wrapped by collaborator adapters so the classifier can tell
// failures apart for logging and metrics.
var (
	ErrUnavailable     = errors.New("collaborator unavailable")
	ErrRateLimited     = errors.New("collaborator rate limited")
	ErrInvalidResponse = errors.New("collaborator returned an invalid response")
	ErrInvalidRule     = errors.New("invalid keyword rule")
)

// ErrorKind is a coarse label for a collaborator failure.
type ErrorKind string

// Known error kinds.
const (
	KindNone            ErrorKind = ""
	KindTimeout         ErrorKind = "timeout"
	KindCanceled        ErrorKind = "canceled"
	KindRateLimited     ErrorKind = "rate_limited"
	KindUnavailable     ErrorKind = "unavailable"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindUnknown         ErrorKind = "unknown"
)

// KindOf classifies err.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	case errors.Is(err, ErrInvalidResponse):
		return KindInvalidResponse
	default:
		return KindUnknown
	}
}

// retryable reports whether another attempt could succeed.
func retryable(err error) bool {
	switch KindOf(err) {
	case KindTimeout, KindCanceled, KindNone:
		return false
	default:
		return true
	}
}
