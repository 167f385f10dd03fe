// Package retry holds the back-off schedule for transient I/O such as
// frame writes and encoder runs. The integration stage is never retried.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// BaseDelay is the wait before the second attempt; it doubles after each
// further failure.
var BaseDelay = 20 * time.Millisecond

// Policy allows attempts calls in total with a doubling, unjittered delay
// between them, and stops as soon as ctx ends. attempts below 1 is
// treated as 1. Use it with backoff.Retry; wrap an error with
// backoff.Permanent to stop early.
func Policy(ctx context.Context, attempts int) backoff.BackOffContext {
	if attempts < 1 {
		attempts = 1
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = BaseDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = time.Minute
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}
