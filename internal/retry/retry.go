// Package retry wraps github.com/sethvargo/go-retry in a small policy value
// that call sites configure once and reuse.
package retry

import (
	"context"
	"errors"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts counts the first call. Values below 1 are treated as 1.
	MaxAttempts int
	// BaseDelay is the first backoff interval; each retry doubles it.
	BaseDelay time.Duration
	// Retryable decides whether an error is worth another attempt.
	// A nil predicate retries nothing.
	Retryable func(error) bool
}

// Do runs op until it succeeds, returns a non-retryable error, or the
// attempts are exhausted. The last error is returned unwrapped.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	base := p.BaseDelay
	if base <= 0 {
		base = time.Millisecond
	}

	backoff := goretry.WithMaxRetries(uint64(attempts-1), goretry.NewExponential(base))

	return goretry.Do(ctx, backoff, func(ctx context.Context) error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable != nil && p.Retryable(err) {
			return goretry.RetryableError(err)
		}
		return err
	})
}

// Attempts runs op through the policy and reports how many calls were made.
// Useful for logging.
func (p Policy) Attempts(ctx context.Context, op func(ctx context.Context) error) (int, error) {
	n := 0
	err := p.Do(ctx, func(ctx context.Context) error {
		n++
		return op(ctx)
	})
	return n, err
}

// Is returns a predicate matching any of the target errors.
func Is(targets ...error) func(error) bool {
	return func(err error) bool {
		for _, t := range targets {
			if errors.Is(err, t) {
				return true
			}
		}
		return false
	}
}
