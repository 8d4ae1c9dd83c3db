package clock

import (
	"context"
	"time"
)

// Clock abstracts time so pacing and rate limiting can be tested without sleeping
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done
	Sleep(ctx context.Context, d time.Duration) error
}

// Real is the wall clock
type Real struct{}

// Now returns the current time
func (Real) Now() time.Time {
	return time.Now()
}

// Sleep waits for d unless ctx is cancelled first
func (Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
