package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/kbukum/iterkit/pipeline"
	"github.com/kbukum/iterkit/validation"
)

// RetryPolicy configures how a failing callback is retried.
// Retries run synchronously inside the pull that triggered them.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of calls, including the first.
	MaxAttempts int
	// InitialBackoff is the wait before the first retry. Zero retries immediately.
	InitialBackoff time.Duration
	// MaxBackoff caps the wait between retries. Zero means no cap.
	MaxBackoff time.Duration
	// BackoffFactor multiplies the wait after each retry.
	BackoffFactor float64
	// Jitter randomizes each wait by up to this fraction (0.0 to 1.0).
	Jitter float64
	// RetryIf reports whether err is worth another attempt.
	RetryIf func(error) bool
	// OnRetry is called before each retry.
	OnRetry func(attempt int, err error, backoff time.Duration)
}

// DefaultRetryPolicy returns three attempts with exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.1,
		RetryIf:        DefaultRetryIf,
	}
}

// DefaultRetryIf retries all errors except context cancellation.
func DefaultRetryIf(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Validate checks the policy bounds.
func (p RetryPolicy) Validate() error {
	return validation.New().
		Positive("max attempts", p.MaxAttempts).
		Custom(p.InitialBackoff >= 0 && p.MaxBackoff >= 0, "backoff", "must not be negative").
		Between("jitter", p.Jitter, 0, 1).
		Err()
}

// Retry calls fn until it succeeds, returns an error rejected by RetryIf,
// or uses up MaxAttempts. The last error is returned unchanged.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	retryIf := policy.RetryIf
	if retryIf == nil {
		retryIf = DefaultRetryIf
	}
	attempts := max(policy.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryIf(err) || attempt == attempts {
			break
		}

		backoff := policy.backoff(attempt)
		if policy.OnRetry != nil {
			policy.OnRetry(attempt, err, backoff)
		}
		if err := wait(ctx, backoff); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

// MapRetry is pipeline.Map with fn retried per element under policy.
// An invalid policy is rejected when the stage is built.
func MapRetry[I, O any](p *pipeline.Pipeline[I], policy RetryPolicy, fn func(ctx context.Context, v I) (O, error)) (*pipeline.Pipeline[O], error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return pipeline.Map(p, func(ctx context.Context, v I) (O, error) {
		return Retry(ctx, policy, func(ctx context.Context) (O, error) {
			return fn(ctx, v)
		})
	}), nil
}

// backoff returns the wait after the given failed attempt.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	if p.InitialBackoff <= 0 {
		return 0
	}
	factor := p.BackoffFactor
	if factor <= 0 {
		factor = 1
	}
	d := float64(p.InitialBackoff) * math.Pow(factor, float64(attempt-1))

	if p.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * p.Jitter
	}
	if p.MaxBackoff > 0 && d > float64(p.MaxBackoff) {
		d = float64(p.MaxBackoff)
	}
	if d < 0 {
		d = float64(p.InitialBackoff)
	}
	return time.Duration(d)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
