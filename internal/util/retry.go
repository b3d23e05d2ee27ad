package util

import (
	"context"
	"time"
)

// Retry runs fn up to maxAttempts times, sleeping between failures with a
// linear backoff: baseDelay after the first failure, twice that after the
// second, and so on. It returns nil on the first success, the last error once
// the attempts are exhausted, or the context error if cancelled while
// waiting.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * baseDelay):
		}
	}
	return err
}
