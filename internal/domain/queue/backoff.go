package queue

import (
	"math"
	"time"
)

// Backoff computes the delay before retry attempt n (1-indexed)
type Backoff interface {
	Delay(attempt int) time.Duration
}

// ConstantBackoff always waits the same interval
type ConstantBackoff struct {
	Interval time.Duration
}

// Delay returns the fixed interval
func (c ConstantBackoff) Delay(_ int) time.Duration {
	return c.Interval
}

// ExponentialBackoff doubles the delay each attempt.
// Delay = min(Initial * 2^(attempt-1), Max).
type ExponentialBackoff struct {
	Initial time.Duration
	Max     time.Duration
}

// Delay returns Initial * 2^(attempt-1), capped at Max
func (e ExponentialBackoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(e.Initial) * math.Pow(2, float64(attempt-1))
	if e.Max > 0 && d > float64(e.Max) {
		return e.Max
	}
	// Without a cap the delay saturates instead of wrapping negative
	if d >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// DefaultBackoff is exponential from 2s, capped at 5 minutes
func DefaultBackoff() Backoff {
	return ExponentialBackoff{Initial: 2 * time.Second, Max: 5 * time.Minute}
}
