package acquisition

import "time"

// Clock supplies time to the scheduler.
type Clock interface {
	// Since returns a monotonic duration since an arbitrary origin.
	Since() time.Duration
	// Now returns the wall-clock time used to timestamp readings.
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct {
	origin time.Time
}

// SystemClock returns a Clock backed by the runtime's monotonic clock.
func SystemClock() Clock {
	return &systemClock{origin: time.Now()}
}

func (c *systemClock) Since() time.Duration { return time.Since(c.origin) }

func (c *systemClock) Now() time.Time { return time.Now() }

func (c *systemClock) Sleep(d time.Duration) { time.Sleep(d) }
