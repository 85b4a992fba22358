package worker

import (
	"math"
	"time"
)

// RetryPolicy drives exponential backoff between delivery attempts. Zero
// fields fall back to defaults, so callers may pass a partially set policy.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

func (r RetryPolicy) normalized() RetryPolicy {
	if r.MaxRetries <= 0 {
		r.MaxRetries = 5
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = time.Second
	}
	if r.MaxDelay <= 0 {
		r.MaxDelay = 5 * time.Minute
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}
	return r
}

// Exhausted reports whether the attempt count has used up the retry budget.
func (r RetryPolicy) Exhausted(attempt int) bool {
	return attempt >= r.normalized().MaxRetries
}

// NextDelay returns the backoff before a given attempt (1-based), clamped to
// MaxDelay. Overflow from large attempt counts clamps too.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	p := r.normalized()
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(float64(p.InitialDelay) * math.Pow(p.BackoffFactor, float64(attempt-1)))
	if d <= 0 || d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}
