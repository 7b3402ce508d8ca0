package syncx

import (
	"context"
	"sync"
	"time"
)

// Latch provides a one-time synchronization primitive
type Latch struct {
	done chan struct{}
	once sync.Once
}

// NewLatch creates a new latch
func NewLatch() *Latch {
	return &Latch{
		done: make(chan struct{}),
	}
}

// CountDown releases the latch, allowing all waiting goroutines to proceed
func (l *Latch) CountDown() {
	l.once.Do(func() {
		close(l.done)
	})
}

// Await waits for the latch to be released
func (l *Latch) Await() {
	<-l.done
}

// AwaitWithContext waits for the latch with context cancellation
func (l *Latch) AwaitWithContext(ctx context.Context) error {
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AwaitWithTimeout waits for the latch with a timeout
func (l *Latch) AwaitWithTimeout(timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-l.done:
		return nil
	case <-timer.C:
		return ErrTimeout
	}
}

// IsReleased returns true if the latch has been released
func (l *Latch) IsReleased() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}
