package uploader

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// ErrAttemptsExhausted reports that every retry attempt failed; the last
// attempt's error is wrapped alongside it.
var ErrAttemptsExhausted = errors.New("uploader: retry attempts exhausted")

// RetryConfig parameterizes the backoff loop.
type RetryConfig struct {
	// Attempts is the total number of tries, including the first.
	Attempts int
	// BaseDelay seeds the exponential backoff; each failed attempt
	// doubles it up to MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// Jitter is the fraction of the computed delay randomized in both
	// directions, e.g. 0.25 for ±25%.
	Jitter float64
}

// DefaultRetryConfig matches the document service's published guidance:
// five tries, one second doubling to a minute, ±25% jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:  5,
		BaseDelay: time.Second,
		MaxDelay:  time.Minute,
		Jitter:    0.25,
	}
}

// Retry runs op until it succeeds or attempts run out. shouldRetry decides
// whether an error is transient; delayOverride may return a server-directed
// wait that replaces the computed backoff for that attempt (a rate-limit
// reset hint). Both callbacks may be nil.
func Retry[T any](
	ctx context.Context,
	cfg RetryConfig,
	op func(ctx context.Context) (T, error),
	shouldRetry func(error) bool,
	delayOverride func(error) (time.Duration, bool),
) (T, error) {
	var zero T
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = time.Minute
	}

	delay := cfg.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if shouldRetry != nil && !shouldRetry(err) {
			return zero, err
		}
		if attempt == cfg.Attempts {
			break
		}

		wait := jittered(delay, cfg.Jitter)
		if delayOverride != nil {
			if hint, ok := delayOverride(err); ok && hint > 0 {
				wait = hint
			}
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}

		delay *= 2
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return zero, errors.Join(ErrAttemptsExhausted, lastErr)
}

// jittered spreads delay by ±fraction to avoid retry stampedes.
func jittered(delay time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return delay
	}
	spread := float64(delay) * fraction
	offset := (rand.Float64()*2 - 1) * spread
	result := time.Duration(float64(delay) + offset)
	if result < 0 {
		return 0
	}
	return result
}
