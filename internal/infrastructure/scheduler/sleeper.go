package scheduler

import (
	"context"
	"time"

	"FeedbackResponder/internal/ports"
)

// TimerSleeper waits on a real timer and wakes early on cancellation.
type TimerSleeper struct{}

var _ ports.Sleeper = TimerSleeper{}

// Sleep blocks for d or until ctx is done, whichever comes first.
func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
