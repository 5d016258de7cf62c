package auth

import (
	"net/http"
	"time"
)

// RetryPolicy describes the retry budget for token acquisition: a maximum
// attempt count and a pure exponential backoff series (no jitter). The delay
// before attempt n+1 is InitialDelay * BackoffFactor^(n-1).
type RetryPolicy struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy matches the harness defaults: three attempts, one second
// initial delay, doubling after every failure.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		InitialDelay:  time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryableStatus reports whether an HTTP status from the token endpoint is
// transient. Rate limits and server-side failures are retried; every other
// status is terminal.
func RetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// Do runs fn up to MaxAttempts times, sleeping between failed attempts.
// fn reports whether its failure is retryable; a terminal failure stops the
// loop immediately. The sleep function is injected so the backoff series can
// be tested without waiting.
//
// The error of the last attempt is returned, whether the loop stopped on a
// terminal failure or exhausted the budget.
func (p RetryPolicy) Do(sleep func(time.Duration), fn func(attempt int) (retryable bool, err error)) error {
	delay := p.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		retryable, err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
		if attempt < p.MaxAttempts {
			sleep(delay)
			delay = time.Duration(float64(delay) * p.BackoffFactor)
		}
	}
	return lastErr
}
