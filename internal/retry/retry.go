// Package retry is the single retry-with-backoff utility shared by every
// external-service call.
package retry

import (
	"context"
	"time"
)

// Do runs fn up to maxAttempts times, sleeping baseDelay, 2*baseDelay,
// 4*baseDelay, ... between attempts. It returns nil on the first success and
// the last error once the budget is spent. The context cancels the wait
// between attempts as well as the attempts themselves.
func Do(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return lastErr
}
