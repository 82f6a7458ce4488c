// Package clock provides the arrival-timestamp source for the matching
// engine. The core never reads a clock itself; the layer in front of it
// stamps every order before entering the critical path.
package clock

import (
	"sync/atomic"
	"time"
)

// Monotonic issues non-decreasing nanosecond stamps from Go's
// monotonic clock reading. Wall-clock time can step backward under NTP
// corrections; the monotonic reading cannot, and the clamp below also
// rules out regressions between concurrent callers, so stamps are safe
// to use as time priority.
type Monotonic struct {
	base time.Time
	last atomic.Int64
}

func NewMonotonic() *Monotonic {
	return &Monotonic{base: time.Now()}
}

// Now returns the next stamp. Ties are possible between concurrent
// callers; a later call never returns a smaller value than an earlier
// one.
func (c *Monotonic) Now() int64 {
	stamp := time.Since(c.base).Nanoseconds()
	for {
		last := c.last.Load()
		if stamp < last {
			stamp = last
		}
		if c.last.CompareAndSwap(last, stamp) {
			return stamp
		}
	}
}
