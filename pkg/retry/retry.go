package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

const defaultDelay = 100 * time.Millisecond

// Backoff returns the wait before the next attempt. attempt starts at 0.
type Backoff func(attempt int) time.Duration

type ShouldRetry func(error) bool

type Config struct {
	MaxAttempts int
	Backoff     Backoff
	ShouldRetry ShouldRetry
}

func (c *Config) normalize() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 1
	}
	if c.Backoff == nil {
		c.Backoff = ExponentialBackoff(defaultDelay, 0)
	}
	if c.ShouldRetry == nil {
		c.ShouldRetry = alwaysRetry
	}
}

func alwaysRetry(error) bool {
	return true
}

// ExponentialBackoff doubles delay per attempt and caps the result at max when max > 0.
func ExponentialBackoff(delay, max time.Duration) Backoff {
	return func(attempt int) time.Duration {
		wait := delay << attempt
		if wait <= 0 || (max > 0 && wait > max) {
			wait = max
		}
		return wait
	}
}

// WithJitter adds up to half of the wrapped backoff as random jitter.
func WithJitter(b Backoff) Backoff {
	return func(attempt int) time.Duration {
		base := b(attempt)
		if base <= 1 {
			return base
		}
		return base + time.Duration(rand.Int63n(int64(base/2))+1)
	}
}

func ConstantBackoff(delay time.Duration) Backoff {
	return func(int) time.Duration {
		return delay
	}
}

func Do(ctx context.Context, c Config, fn func() error) error {
	_, err := DoWithResult(ctx, c, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult runs fn until it succeeds, returns a non-retryable error,
// exhausts MaxAttempts, or ctx is done.
func DoWithResult[T any](ctx context.Context, c Config, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	c.normalize()
	timer := time.NewTimer(0)
	<-timer.C
	defer timer.Stop()

	var err error
	for attempt := 0; attempt < c.MaxAttempts; attempt++ {
		var result T
		result, err = fn()
		if err == nil {
			return result, nil
		}
		if !c.ShouldRetry(err) || attempt == c.MaxAttempts-1 {
			return zero, err
		}

		timer.Reset(c.Backoff(attempt))
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%w: %w", ctx.Err(), err)
		case <-timer.C:
		}
	}
	return zero, err
}
