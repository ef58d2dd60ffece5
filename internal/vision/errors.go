package vision

import (
	"errors"
	"fmt"
)

// ErrorKind classifies upstream model failures for retry decisions.
type ErrorKind string

const (
	// KindRateLimited maps HTTP 429. Retryable; the invoking scheduler
	// decides whether to back off before the next tick.
	KindRateLimited ErrorKind = "rate_limited"
	// KindQuotaExceeded maps HTTP 402. Non-retryable until an operator
	// intervenes (credits, billing).
	KindQuotaExceeded ErrorKind = "quota_exceeded"
	// KindUnavailable covers any other non-2xx status. Retryable once.
	KindUnavailable ErrorKind = "unavailable"
)

// UpstreamError is a classified failure from the vision model endpoint.
type UpstreamError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("vision upstream %s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("vision upstream %s: %s", e.Kind, e.Message)
}

func classify(status int, msg string) *UpstreamError {
	kind := KindUnavailable
	switch status {
	case 429:
		kind = KindRateLimited
	case 402:
		kind = KindQuotaExceeded
	}
	return &UpstreamError{Kind: kind, Status: status, Message: msg}
}

// IsRateLimited reports whether err is an upstream 429.
func IsRateLimited(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Kind == KindRateLimited
}

// IsFatal reports whether err is non-retryable (quota/payment failure).
func IsFatal(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Kind == KindQuotaExceeded
}
