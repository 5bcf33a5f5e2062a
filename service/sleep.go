package service

import (
	"context"
	"math/rand/v2"
	"time"
)

// Sleep waits for d or until ctx is done, whichever comes first
func Sleep(ctx context.Context, d time.Duration) error {
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

// JitterMinutes returns a whole number of minutes drawn uniformly from [lo, hi]
func JitterMinutes(lo, hi int) time.Duration {
	if hi <= lo {
		return time.Duration(lo) * time.Minute
	}
	return time.Duration(lo+rand.IntN(hi-lo+1)) * time.Minute
}
