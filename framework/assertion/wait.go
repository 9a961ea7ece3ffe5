package assertion

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultWaitTimeout  = 5 * time.Second
	DefaultWaitInterval = 100 * time.Millisecond
)

// WaitFor calls condition every interval until it returns true, and fails once timeout has
// elapsed. An error from condition is returned as is. Zero values select the defaults.
func WaitFor(
	ctx context.Context,
	condition func(ctx context.Context) (bool, error),
	timeout, interval time.Duration,
	msgAndArgs ...interface{},
) error {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	if interval <= 0 {
		interval = DefaultWaitInterval
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := condition(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fail(messageOf(msgAndArgs, fmt.Sprintf("condition was not met within %s", timeout)))
		case <-ticker.C:
		}
	}
}
