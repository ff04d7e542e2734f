package utils

import (
	"context"
	"errors"
	"time"
)

var ErrTimeout = errors.New("timeout")

// Clock calls process right away and then on every interval until it returns
// nil. A zero timeout never expires.
func Clock(ctx context.Context, timeout, interval time.Duration, process func() error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := process(); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrTimeout
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
