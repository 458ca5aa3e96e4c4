package httpclient

import (
	"net/http"
	"time"
)

// RetryPolicy decides whether a content fetch is worth another attempt
// and how long to back off. The crawl loop never retries; this policy
// is used only by the single-page content path.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryPolicy allows two retries with capped exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
	}
}

// ShouldRetry reports whether the attempt failed in a way that may
// succeed on retry.
func (p RetryPolicy) ShouldRetry(attempt int, statusCode int, err error) bool {
	if attempt >= p.MaxAttempts {
		return false
	}
	if err != nil {
		return true
	}
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Backoff returns the wait before the given (1-based) attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	backoff := p.InitialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff > p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	return backoff
}
