package syncx

import "errors"

// Executor errors
var (
	ErrAlreadyStarted = errors.New("executor already started")
	ErrNotStarted     = errors.New("executor not started")
	ErrStopped        = errors.New("executor is stopped")
	ErrAlreadyStopped = errors.New("executor already stopped")
	ErrTimeout        = errors.New("operation timed out")
	ErrNoGoroutineID  = errors.New("goroutine id unavailable")
)

// Queue errors
var (
	ErrQueueClosed = errors.New("queue is closed")
)
