package worker

import (
	"context"
	"time"
)

// maxSleep bounds a single timer so wall-clock jumps (suspend, NTP) are noticed
const maxSleep = time.Minute

// Clock abstracts wall-clock time for the scheduler
type Clock interface {
	Now() time.Time

	// SleepUntil blocks until the wall clock reaches t or ctx is done
	SleepUntil(ctx context.Context, t time.Time) error
}

// SystemClock uses the local wall clock
type SystemClock struct{}

// Now returns the current local time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// SleepUntil waits in steps of at most maxSleep, re-reading the wall clock each time
func (SystemClock) SleepUntil(ctx context.Context, t time.Time) error {
	for {
		d := time.Until(t)
		if d <= 0 {
			return nil
		}
		if d > maxSleep {
			d = maxSleep
		}

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
