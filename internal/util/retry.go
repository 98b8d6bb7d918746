// Package util provides shared helpers for sheetkeep.
package util

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
)

// PollInterval is the delay between attempts while waiting on a busy resource.
const PollInterval = 50 * time.Millisecond

// Poll calls fn every PollInterval while it fails with an error accepted by
// retryable, giving up once timeout has elapsed or ctx is done. A zero timeout
// means a single attempt. The last error is returned.
func Poll(ctx context.Context, timeout time.Duration, retryable func(error) bool, fn func() error) error {
	return retry.Do(fn, pollOptions(ctx, timeout, retryable)...)
}

func pollOptions(ctx context.Context, timeout time.Duration, retryable func(error) bool) []retry.Option {
	attempts := uint(timeout/PollInterval) + 1
	return []retry.Option{
		retry.Attempts(attempts),
		retry.Delay(PollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(retryable),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	}
}

// IsTarget returns a predicate matching errors that wrap target.
func IsTarget(target error) func(error) bool {
	return func(err error) bool {
		return errors.Is(err, target)
	}
}
