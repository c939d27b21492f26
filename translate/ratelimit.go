package translate

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// ---------------------------------------------------------------------------
// Rate limiter (shared by all workers of a job)
// ---------------------------------------------------------------------------

// limiter throttles outbound requests independent of the worker count.
// A token-bucket limiter caps the steady request rate, and a global pause
// holds every worker back when the provider answers 429 so parallel
// workers don't burn the remaining attempts against a known-closed door.
type limiter struct {
	bucket *rate.Limiter

	mu       sync.Mutex
	paused   int32 // atomic: 1 = paused
	pauseEnd time.Time
}

func newLimiter(rps float64, burst int) *limiter {
	return &limiter{bucket: rate.NewLimiter(rate.Limit(rps), burst)}
}

// wait blocks until a request permit is available. Both the pause wait and
// the token wait abort when ctx is cancelled.
func (l *limiter) wait(ctx context.Context) error {
	if err := l.waitIfPaused(ctx); err != nil {
		return err
	}
	return l.bucket.Wait(ctx)
}

func (l *limiter) isPaused() bool {
	return atomic.LoadInt32(&l.paused) == 1
}

func (l *limiter) pause(duration time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pauseEnd = time.Now().Add(duration)
	atomic.StoreInt32(&l.paused, 1)
}

func (l *limiter) unpause() {
	atomic.StoreInt32(&l.paused, 0)
}

// waitIfPaused blocks until the rate limit pause is over.
func (l *limiter) waitIfPaused(ctx context.Context) error {
	for l.isPaused() {
		l.mu.Lock()
		remaining := time.Until(l.pauseEnd)
		l.mu.Unlock()
		if remaining <= 0 {
			l.unpause()
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(min(remaining, 100*time.Millisecond)):
		}
	}
	return nil
}
