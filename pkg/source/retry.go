package source

import (
	"context"
	"log/slog"
	"time"

	perrors "github.com/pastries/pastries/pkg/errors"
)

// withRetry runs fetch once plus one retry per entry in delays, sleeping
// delays[i] before retry i. Only retryable network failures are retried.
func withRetry(ctx context.Context, delays []time.Duration, logger *slog.Logger, uri string, fetch func(context.Context) error) error {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := fetch(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 || !perrors.IsRetryable(err) {
			break
		}

		if logger != nil {
			logger.Debug("retrying fetch", "uri", uri, "attempt", attempt+2, "error", err)
		}

		select {
		case <-ctx.Done():
			return perrors.Network("download", uri, ctx.Err())
		case <-time.After(delays[attempt]):
		}
	}

	return lastErr
}
