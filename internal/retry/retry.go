// Package retry provides the exponential backoff helper the ingestion
// callback path (backfill and tail) wraps around each log's handler.
package retry

import (
	"context"
	"time"
)

// Do runs fn up to maxAttempts times, sleeping 2^n seconds between attempts
// (n is the zero-based attempt index). It returns the last error if every
// attempt fails, or nil as soon as one succeeds.
func Do(ctx context.Context, maxAttempts int, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := fn(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return lastErr
}
