package upstream

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoData is returned when neither a fresh cache, a stale cache, a
// snapshot, nor the fallback dataset can satisfy a request. With the
// fallback in place it should be unreachable, but callers still handle it.
var ErrNoData = errors.New("no artifact data available")

// ErrTimeout is returned when a dataset refresh loses the race against
// its wall-clock budget. The refresh keeps running in the background.
var ErrTimeout = errors.New("aggregation timed out")

// AuthError represents a 401/403 response. Never retried: the token is
// wrong or expired and repeating the request cannot fix that.
type AuthError struct {
	StatusCode int
	URL        string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("upstream authentication failed (HTTP %d): %s", e.StatusCode, e.URL)
}

// NotFoundError represents a 404 response. Never retried.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("upstream resource not found: %s", e.URL)
}

// RateLimitError represents a 429 response or an exhausted rate budget.
// RetryAfter is derived from the rate-limit-reset header when present.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by upstream, retry after %s", e.RetryAfter)
}

// TransientError represents a 5xx response or a network failure.
// Retried with exponential backoff up to the client's retry budget.
type TransientError struct {
	StatusCode int
	URL        string
	Err        error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient upstream error: %s: %s", e.URL, e.Err)
	}
	return fmt.Sprintf("transient upstream error (HTTP %d): %s", e.StatusCode, e.URL)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsRateLimited reports whether err is a rate-limit failure.
func IsRateLimited(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
