package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	connectAttempts = 5
	connectBackoff  = 500 * time.Millisecond
)

// pingWithRetry retries ping with exponential backoff so the server can start
// alongside containers that are still booting.
func pingWithRetry(ctx context.Context, name string, ping func(context.Context) error, initial time.Duration, log zerolog.Logger) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initial
	policy.Multiplier = 2
	policy.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(policy, connectAttempts-1), ctx)

	attempt := 0
	operation := func() error {
		attempt++
		return ping(ctx)
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).
			Str("dependency", name).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("Dependency not ready")
	}

	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", name, ctxErr)
		}
		return fmt.Errorf("%s unreachable after %d attempts: %w", name, attempt, err)
	}
	return nil
}
