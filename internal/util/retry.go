// ABOUTME: Retry utilities for storage contention and reply delivery
// ABOUTME: Fixed-delay retry under a time budget plus exponential backoff with jitter
package util

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// ErrBudgetExhausted is returned when RetryFixed runs out of time.
var ErrBudgetExhausted = errors.New("retry budget exhausted")

// CalculateBackoff returns exponential backoff with jitter
// Base delay is doubled each attempt, with random jitter up to 25%
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	// Cap attempt to avoid overflow in bit shift (max 30 for safety)
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	if backoff < 4 {
		return backoff
	}
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}

// RetryFixed calls fn until it succeeds, returns a non-retryable error, the
// context ends, or budget elapses. Between attempts it sleeps for delay.
// When the budget runs out the last error is wrapped with ErrBudgetExhausted.
func RetryFixed(ctx context.Context, delay, budget time.Duration, retryable func(error) bool, fn func() error) error {
	deadline := time.Now().Add(budget)
	attempts := 0
	for {
		err := fn()
		attempts++
		if err == nil || !retryable(err) {
			return err
		}
		if time.Now().Add(delay).After(deadline) {
			return fmt.Errorf("%w after %d attempts: %w", ErrBudgetExhausted, attempts, err)
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("retry interrupted: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}

// Sleep is the context-aware wait used between delivery attempts.
func Sleep(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}
