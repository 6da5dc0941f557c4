package llm

import (
	"context"
	"fmt"
	"time"
)

// RetryBackoff is the base delay between attempts; attempt n waits n*RetryBackoff.
var RetryBackoff = 500 * time.Millisecond

// Retry calls fn up to attempts times with a linearly growing pause between failures.
// It stops early when ctx is cancelled.
func Retry[T any](ctx context.Context, attempts int, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("retry cancelled after %d attempts: %w", i+1, lastErr)
		case <-time.After(time.Duration(i+1) * RetryBackoff):
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
