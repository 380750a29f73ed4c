// Package poll implements the fixed-interval waits used wherever a state
// change is reported by a runtime callback that exposes no wakeup hook.
package poll

import (
	"context"
	"time"
)

// DefaultInterval is the polling interval used when none is configured.
const DefaultInterval = 10 * time.Millisecond

// Until evaluates cond every interval until it returns true, the timeout
// elapses, or ctx is done. It reports whether cond became true.
//
// A timeout <= 0 waits without a deadline (only ctx bounds the wait).
// Timing out stops only the waiting; whatever cond observes keeps going.
func Until(ctx context.Context, interval, timeout time.Duration, cond func() bool) bool {
	if cond() {
		return true
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return cond()
		case <-ticker.C:
		}
		if cond() {
			return true
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return false
		}
	}
}
