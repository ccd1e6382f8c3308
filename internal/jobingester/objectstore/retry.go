package objectstore

import (
	"context"
	"time"

	"github.com/avast/retry-go"
)

// DownloadWithRetry fetches one object to destPath, retrying failures with
// backoff. Object store failures are treated as transient up to the attempt
// limit.
func DownloadWithRetry(ctx context.Context, store ObjectStore, key, destPath string, maxAttempts, maxBackoff int) error {
	return retry.Do(
		func() error {
			return store.Download(ctx, key, destPath)
		},
		retry.Attempts(uint(maxAttempts)),
		retry.Delay(time.Second),
		retry.MaxDelay(time.Duration(maxBackoff)*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
}
