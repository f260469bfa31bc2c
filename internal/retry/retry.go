// Package retry implements exponential backoff with jitter for
// transient failures inside a single strategy attempt.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/burnratehq/burnrate/internal/apperr"
)

// Policy controls the backoff schedule.
type Policy struct {
	MaxAttempts     int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	ExponentialBase float64
	Jitter          bool
}

// DefaultPolicy returns the standard schedule: 3 attempts, 1s base,
// 60s cap, doubling, jitter on.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		BaseDelay:       time.Second,
		MaxDelay:        60 * time.Second,
		ExponentialBase: 2.0,
		Jitter:          true,
	}
}

// Delay returns the backoff delay after attempt n (0-indexed):
// min(max_delay, base·baseⁿ·(1+U)) where U is a uniform [0, 0.25)
// draw when jitter is enabled.
func (p Policy) Delay(attempt int) time.Duration {
	d := float64(p.BaseDelay) * math.Pow(p.ExponentialBase, float64(attempt))
	if p.Jitter {
		d *= 1 + rand.Float64()*0.25
	}
	if capped := float64(p.MaxDelay); d > capped {
		d = capped
	}
	return time.Duration(d)
}

// DelayWithFloor returns the backoff delay raised to at least floor.
// Used to honour a Retry-After header on 429 responses.
func (p Policy) DelayWithFloor(attempt int, floor time.Duration) time.Duration {
	d := p.Delay(attempt)
	if floor > d {
		return floor
	}
	return d
}

// Attempt is one invocation of the operation under retry. It returns
// the operation error plus an optional Retry-After floor for the next
// backoff delay.
type Attempt func(ctx context.Context) (retryAfter time.Duration, err error)

// Do runs op up to MaxAttempts times, sleeping the policy delay between
// attempts. It stops early when the error is not retryable per the
// taxonomy, or when the context is done; retries never extend past the
// context deadline.
func Do(ctx context.Context, p Policy, op Attempt) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		retryAfter, err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == p.MaxAttempts-1 || !apperr.Retryable(err) {
			break
		}

		delay := p.Delay(attempt)
		if m := apperr.Classify(err); m != nil && m.Category == apperr.CategoryRateLimited && retryAfter > 0 {
			delay = p.DelayWithFloor(attempt, retryAfter)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}
