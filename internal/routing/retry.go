package routing

import (
	"context"
	"errors"
	"time"

	"safar/internal/domain"
)

// RetryPolicy is an explicit retry policy value: attempt bound, backoff
// schedule, and a retryable predicate. It is independent of the transport
// it wraps.
type RetryPolicy struct {
	MaxAttempts int
	Delays      []time.Duration
	Retryable   func(err error) bool
}

// DefaultRetryPolicy returns the default schedule: 3 attempts backed off at
// 1s, 2s, 4s. Auth failures, malformed requests, affirmative no-route
// answers, and caller cancellation are never retried.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Delays:      []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
		Retryable:   DefaultRetryable,
	}
}

// DefaultRetryable is the default retryable predicate.
func DefaultRetryable(err error) bool {
	if errors.Is(err, ErrRouteNotFound) || errors.Is(err, ErrInvalidRequest) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return Classify(err) != domain.ErrClassAuth
}

// delay returns the backoff before retry number attempt (0-based). The last
// schedule entry repeats if attempts outnumber entries.
func (p RetryPolicy) delay(attempt int) time.Duration {
	if len(p.Delays) == 0 {
		return 0
	}
	if attempt >= len(p.Delays) {
		return p.Delays[len(p.Delays)-1]
	}
	return p.Delays[attempt]
}

// Do runs fn until it succeeds, the policy is exhausted, fn fails with a
// non-retryable error, or ctx is cancelled. Backoff sleeps only the calling
// goroutine.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(p.delay(attempt - 1))
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
	}

	return err
}
