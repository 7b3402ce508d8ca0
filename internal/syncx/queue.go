package syncx

import (
	"sync"
)

// FIFO is an unbounded, thread-safe first-in first-out queue of tasks.
//
// Unlike a bounded channel it never blocks producers, so a task running on the
// consuming goroutine can always enqueue more work for the same consumer.
type FIFO struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	items    []func()
	closed   bool
}

// NewFIFO creates an empty queue.
func NewFIFO() *FIFO {
	q := &FIFO{}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Push appends a task to the tail of the queue.
func (q *FIFO) Push(task func()) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	q.items = append(q.items, task)
	q.notEmpty.Signal()
	return nil
}

// Pop removes and returns the head of the queue without blocking.
func (q *FIFO) Pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.popLocked()
}

// PopBlocking removes and returns the head of the queue, blocking until a task
// is available. It returns false once the queue is closed and fully drained.
func (q *FIFO) PopBlocking() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.notEmpty.Wait()
	}

	return q.popLocked()
}

func (q *FIFO) popLocked() (func(), bool) {
	if len(q.items) == 0 {
		return nil, false
	}

	task := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return task, true
}

// Len returns the current number of queued tasks.
func (q *FIFO) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain removes and returns all queued tasks.
func (q *FIFO) Drain() []func() {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := make([]func(), len(q.items))
	copy(items, q.items)
	q.items = nil
	return items
}

// Close stops accepting new tasks. Tasks already queued can still be popped.
func (q *FIFO) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.notEmpty.Broadcast()
}

// IsClosed returns true if the queue is closed.
func (q *FIFO) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
