package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/BradenHooton/frontdesk/pkg/gate"
)

type Backoff string

const (
	BackoffLinear      Backoff = "linear"
	BackoffExponential Backoff = "exponential"
)

// RetryPolicy bounds data-load retries. MaxRetries counts attempts, not
// re-tries: 3 means at most three requests.
type RetryPolicy struct {
	MaxRetries int
	Base       time.Duration
	Backoff    Backoff
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, Base: 500 * time.Millisecond, Backoff: BackoffExponential}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = 3
	}
	if p.Base <= 0 {
		p.Base = 500 * time.Millisecond
	}
	if p.Backoff == "" {
		p.Backoff = BackoffExponential
	}
	return p
}

// Delay is the wait after the given failed attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if p.Backoff == BackoffLinear {
		return p.Base * time.Duration(attempt)
	}
	return p.Base << (attempt - 1)
}

// sleepFunc waits d or until ctx ends.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// retryable reports whether a failed load is worth another attempt.
func retryable(err error) bool {
	var netErr *gate.NetworkError
	return errors.As(err, &netErr)
}

// withRetry runs fn until it succeeds, fails for good, or the policy runs out.
// It returns the number of attempts made.
func withRetry(ctx context.Context, p RetryPolicy, sleep sleepFunc, fn func(context.Context) error) (int, error) {
	var err error
	for attempt := 1; attempt <= p.MaxRetries; attempt++ {
		err = fn(ctx)
		if err == nil || !retryable(err) {
			return attempt, err
		}
		if attempt == p.MaxRetries {
			return attempt, err
		}
		if serr := sleep(ctx, p.Delay(attempt)); serr != nil {
			return attempt, serr
		}
	}
	return p.MaxRetries, err
}
