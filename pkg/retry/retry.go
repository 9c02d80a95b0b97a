package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"structnotify/pkg/metrics"
)

type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxElapsedTime  time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
		MaxElapsedTime:  time.Minute,
	}
}

// Do retries fn with exponential backoff until it succeeds, the policy is
// exhausted, or ctx is cancelled. A backoff.Permanent error stops retrying
// immediately.
func Do(ctx context.Context, operation string, policy Policy, fn func() error) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 3
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = policy.InitialInterval
	exp.MaxInterval = policy.MaxInterval
	exp.Multiplier = policy.Multiplier
	exp.MaxElapsedTime = policy.MaxElapsedTime

	var b backoff.BackOff = exp
	b = backoff.WithContext(b, ctx)
	b = backoff.WithMaxRetries(b, uint64(policy.MaxAttempts-1))

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := fn()
		if err != nil && attempt > 1 {
			metrics.RetryAttemptsTotal.WithLabelValues(operation).Inc()
		}
		return err
	}, b)
}

// Permanent marks err as non-retryable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}
