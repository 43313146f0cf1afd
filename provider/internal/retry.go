package internal

import (
	"context"
	"time"
)

// RetryResult calls fn up to maxAttempts times with exponential backoff
// (100ms, 200ms, 400ms, ...), respecting context cancellation between
// attempts. Returns the last error if all attempts fail.
func RetryResult[T any](ctx context.Context, maxAttempts int, fn func() (T, error)) (T, error) {
	var result T
	var err error
	for i := 0; i < maxAttempts; i++ {
		if result, err = fn(); err == nil {
			return result, nil
		}
		if i < maxAttempts-1 {
			select {
			case <-time.After(time.Duration(100*(1<<i)) * time.Millisecond):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}
	return result, err
}
