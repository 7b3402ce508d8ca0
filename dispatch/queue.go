package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/a2y-d5l/go-kvobserver/internal/syncx"
	"github.com/a2y-d5l/go-kvobserver/observability"
)

// Queue runs work on an execution context.
type Queue interface {
	// Async submits fn and returns immediately. Work submitted to one queue
	// runs in submission order.
	Async(fn func())
	// Sync submits fn and blocks until it has run. Calling Sync from the
	// queue itself is a deadlock.
	Sync(fn func())
}

// MainQueue is a Queue that can tell whether the caller is running on it.
type MainQueue interface {
	Queue
	IsCurrent() bool
}

// Transactional is a managed execution context.
type Transactional interface {
	// Perform schedules fn inside the context and returns immediately.
	Perform(fn func())
	// PerformAndWait runs fn inside the context and waits for it.
	PerformAndWait(fn func())
}

// SerialQueue runs work one item at a time, in submission order, on its own
// goroutine.
type SerialQueue struct {
	label  string
	exec   *syncx.Serial
	logger observability.Logger
}

type queueConfig struct {
	logger  observability.Logger
	onPanic func(recovered any)
}

// QueueOption configures a SerialQueue.
type QueueOption func(*queueConfig)

// WithQueueLogger sets the logger used for dropped work and recovered panics.
func WithQueueLogger(logger observability.Logger) QueueOption {
	return func(c *queueConfig) {
		c.logger = logger
	}
}

// WithPanicHandler keeps the queue alive when a work item panics and hands
// the recovered value to fn.
func WithPanicHandler(fn func(recovered any)) QueueOption {
	return func(c *queueConfig) {
		c.onPanic = fn
	}
}

// NewSerialQueue creates and starts a serial queue.
func NewSerialQueue(label string, opts ...QueueOption) *SerialQueue {
	cfg := &queueConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = observability.Default()
	}
	logger := cfg.logger.With(observability.Queue(label))

	q := &SerialQueue{
		label:  label,
		logger: logger,
		exec: syncx.NewSerial(syncx.SerialConfig{
			Name:         label,
			Metrics:      true,
			PanicHandler: cfg.onPanic,
		}),
	}
	if err := q.exec.Start(); err != nil {
		panic(fmt.Errorf("dispatch: starting queue %q: %w", label, err))
	}
	return q
}

// Label returns the name given at construction.
func (q *SerialQueue) Label() string { return q.label }

// Async submits fn. Work submitted after Close is dropped.
func (q *SerialQueue) Async(fn func()) {
	if err := q.exec.Submit(fn); err != nil {
		q.logger.Warn("work dropped", observability.ErrorField(err), observability.Operation("async"))
	}
}

// Sync runs fn on the queue and waits for it. After Close, fn is dropped and
// Sync returns immediately.
func (q *SerialQueue) Sync(fn func()) {
	if err := q.exec.RunSync(fn); err != nil {
		q.logger.Warn("work dropped", observability.ErrorField(err), observability.Operation("sync"))
	}
}

// IsCurrent reports whether the caller is running on the queue's goroutine.
func (q *SerialQueue) IsCurrent() bool { return q.exec.IsCurrent() }

// Len returns the number of work items waiting to run.
func (q *SerialQueue) Len() int { return q.exec.QueueDepth() }

// Stats returns executor counters.
func (q *SerialQueue) Stats() syncx.SerialMetrics { return q.exec.Metrics() }

// Close stops accepting work and waits until everything already submitted has
// run, or ctx is done. Closing twice is a no-op.
func (q *SerialQueue) Close(ctx context.Context) error {
	err := q.exec.Stop(ctx)
	if errors.Is(err, syncx.ErrAlreadyStopped) {
		return nil
	}
	return err
}

var (
	mainOnce  sync.Once
	mainQueue *SerialQueue
)

// Main returns the process main queue, starting it on first use. It is never
// closed.
func Main() *SerialQueue {
	mainOnce.Do(func() {
		mainQueue = NewSerialQueue("main", WithPanicHandler(func(recovered any) {
			observability.Error("panic on main queue", observability.Queue("main"), observability.Panic(recovered))
		}))
	})
	return mainQueue
}
