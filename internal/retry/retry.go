package retry

import (
	"context"
	"fmt"
	"time"
)

type Config struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool // doubles the delay after each failed attempt
}

// WithRetry runs fn until it succeeds, the attempt budget runs out, or ctx
// is cancelled. The sleep between attempts is interrupted by cancellation.
func WithRetry(ctx context.Context, cfg Config, fn func() error) error {
	delay := cfg.Delay

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		if attempt >= cfg.MaxAttempts {
			return fmt.Errorf("failed after %d attempts: %w", attempt, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if cfg.Backoff {
			delay *= 2
		}
	}
}
