package pipeline

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/dgallion1/gongwen/internal/pathstore"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *pathstore.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3

// withRetry runs fn until it succeeds, fails permanently or MaxRetries
// attempts are used. wait yields the pause before the next attempt.
func withRetry(ctx context.Context, wait func(attempt int) time.Duration, onRetry func(attempt int, err error), fn func() error) error {
	var err error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		err = fn()
		if err == nil || !IsRetryable(err) {
			return err
		}
		if attempt == MaxRetries-1 {
			break
		}
		if onRetry != nil {
			onRetry(attempt, err)
		}
		select {
		case <-time.After(wait(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
