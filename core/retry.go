package core

import (
	"errors"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy decides whether a failed attempt is retried and how long to
// wait first.
type RetryPolicy interface {
	// NextDelay returns the delay before the next attempt and whether to
	// retry. attempt is zero-based: 0 is the decision after the first try.
	NextDelay(attempt int, err error) (delay time.Duration, ok bool)
}

// RetryConfig configures the default exponential backoff policy.
type RetryConfig struct {
	MaxRetries int           // retries after the initial attempt (0 = default 2, negative = none)
	BaseDelay  time.Duration // delay before the first retry (default 500ms)
	MaxDelay   time.Duration // cap on any single delay (default 30s)
	Jitter     float64       // symmetric jitter fraction 0.0-1.0 (default 0.2)
}

// DefaultRetryPolicy returns the backoff policy used when none is set:
// up to maxRetries retries (0 = the default of 2, negative = none),
// 500ms base doubling per attempt, 30s cap, ±20% jitter.
func DefaultRetryPolicy(maxRetries int) RetryPolicy {
	return NewRetryPolicy(RetryConfig{MaxRetries: maxRetries})
}

// NewRetryPolicy creates an exponential backoff policy from cfg, filling
// zero fields with defaults.
func NewRetryPolicy(cfg RetryConfig) RetryPolicy {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	} else if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	if cfg.Jitter < 0 || cfg.Jitter > 1 {
		cfg.Jitter = 0.2
	}
	return &exponentialBackoff{cfg: cfg}
}

type exponentialBackoff struct {
	cfg RetryConfig
}

func (e *exponentialBackoff) NextDelay(attempt int, err error) (time.Duration, bool) {
	if attempt >= e.cfg.MaxRetries {
		return 0, false
	}
	if !IsRetryable(err) {
		return 0, false
	}

	// A server-provided Retry-After takes precedence over the computed
	// backoff, clamped to the cap.
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		if apiErr.RetryAfter > e.cfg.MaxDelay {
			return e.cfg.MaxDelay, true
		}
		return apiErr.RetryAfter, true
	}

	// base * 2^attempt, capped, then symmetric jitter so concurrent
	// callers do not retry in lockstep.
	delay := float64(e.cfg.BaseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(e.cfg.MaxDelay) {
		delay = float64(e.cfg.MaxDelay)
	}
	if e.cfg.Jitter > 0 {
		delay += (rand.Float64()*2 - 1) * delay * e.cfg.Jitter
	}
	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay), true
}

// IsRetryable reports whether err is a transient condition worth retrying:
// connection failures, timeouts, HTTP 429, and HTTP 5xx. Cancellation,
// decode failures, and all other statuses are not retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case KindConnection, KindTimeout, KindRateLimit, KindInternalServer:
			return true
		default:
			return false
		}
	}
	return false
}
