package syncx

import (
	"context"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// Serial runs submitted tasks one at a time, in submission order, on a single
// dedicated goroutine.
type Serial struct {
	name    string
	tasks   *FIFO
	done    chan struct{}
	metrics *SerialMetrics
	onPanic func(recovered any)

	// gid is the goroutine id of the worker, zero until Start.
	gid atomic.Int64

	started int32
	stopped int32
}

// SerialConfig holds configuration for creating a Serial executor
type SerialConfig struct {
	Name    string
	Metrics bool
	// PanicHandler, when set, receives values recovered from panicking tasks
	// and the worker keeps running. When nil a panicking task crashes the
	// process, like any other unrecovered goroutine panic.
	PanicHandler func(recovered any)
}

// SerialMetrics tracks executor activity
type SerialMetrics struct {
	TasksSubmitted uint64
	TasksCompleted uint64
	TasksPanicked  uint64
	QueueDepth     int64
}

// NewSerial creates a new Serial executor with the given configuration
func NewSerial(config SerialConfig) *Serial {
	s := &Serial{
		name:    config.Name,
		tasks:   NewFIFO(),
		done:    make(chan struct{}),
		onPanic: config.PanicHandler,
	}

	if config.Metrics {
		s.metrics = &SerialMetrics{}
	}

	return s
}

// Name returns the label given at construction.
func (s *Serial) Name() string {
	return s.name
}

// Start launches the worker goroutine. Tasks submitted before Start are kept
// and run once the worker is up.
//
// Start returns ErrNoGoroutineID, and the executor is left stopped, when the
// worker cannot learn its own goroutine id: IsCurrent would otherwise always
// report false.
func (s *Serial) Start() error {
	if !atomic.CompareAndSwapInt32(&s.started, 0, 1) {
		return ErrAlreadyStarted
	}

	ready := NewLatch()
	go s.worker(ready)
	ready.Await()

	if s.gid.Load() == 0 {
		return ErrNoGoroutineID
	}
	return nil
}

// Submit enqueues a task for asynchronous execution
func (s *Serial) Submit(task func()) error {
	if atomic.LoadInt32(&s.stopped) == 1 {
		return ErrStopped
	}

	if err := s.tasks.Push(task); err != nil {
		return ErrStopped
	}

	if s.metrics != nil {
		atomic.AddUint64(&s.metrics.TasksSubmitted, 1)
		atomic.StoreInt64(&s.metrics.QueueDepth, int64(s.tasks.Len()))
	}

	return nil
}

// RunSync enqueues a task and blocks until the worker has run it.
//
// Calling RunSync from a task already running on s never returns: the worker
// would wait on itself. Callers that may be on the worker must check IsCurrent.
func (s *Serial) RunSync(task func()) error {
	if atomic.LoadInt32(&s.started) == 0 {
		return ErrNotStarted
	}

	latch := NewLatch()
	err := s.Submit(func() {
		defer latch.CountDown()
		task()
	})
	if err != nil {
		return err
	}

	latch.Await()
	return nil
}

// IsCurrent reports whether the calling goroutine is the worker goroutine.
func (s *Serial) IsCurrent() bool {
	id := s.gid.Load()
	return id != 0 && id == goid.Get()
}

// Stop stops accepting new tasks, lets the worker finish the ones already
// queued and waits for it to exit.
func (s *Serial) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.stopped, 0, 1) {
		return ErrAlreadyStopped
	}

	s.tasks.Close()

	if atomic.LoadInt32(&s.started) == 0 {
		return nil
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Metrics returns the current executor metrics
func (s *Serial) Metrics() SerialMetrics {
	if s.metrics == nil {
		return SerialMetrics{}
	}

	return SerialMetrics{
		TasksSubmitted: atomic.LoadUint64(&s.metrics.TasksSubmitted),
		TasksCompleted: atomic.LoadUint64(&s.metrics.TasksCompleted),
		TasksPanicked:  atomic.LoadUint64(&s.metrics.TasksPanicked),
		QueueDepth:     atomic.LoadInt64(&s.metrics.QueueDepth),
	}
}

// QueueDepth returns the current number of tasks waiting to run
func (s *Serial) QueueDepth() int {
	return s.tasks.Len()
}

// IsStarted returns true if the executor has been started
func (s *Serial) IsStarted() bool {
	return atomic.LoadInt32(&s.started) == 1
}

// IsStopped returns true if the executor has been stopped
func (s *Serial) IsStopped() bool {
	return atomic.LoadInt32(&s.stopped) == 1
}

// worker is the main worker loop
func (s *Serial) worker(ready *Latch) {
	defer close(s.done)

	id := goid.Get()
	s.gid.Store(id)
	if id == 0 {
		atomic.StoreInt32(&s.stopped, 1)
		s.tasks.Close()
		ready.CountDown()
		return
	}
	ready.CountDown()

	for {
		task, ok := s.tasks.PopBlocking()
		if !ok {
			return
		}
		if task == nil {
			continue
		}

		s.run(task)

		if s.metrics != nil {
			atomic.AddUint64(&s.metrics.TasksCompleted, 1)
			atomic.StoreInt64(&s.metrics.QueueDepth, int64(s.tasks.Len()))
		}
	}
}

func (s *Serial) run(task func()) {
	if s.onPanic != nil {
		defer func() {
			if r := recover(); r != nil {
				if s.metrics != nil {
					atomic.AddUint64(&s.metrics.TasksPanicked, 1)
				}
				s.onPanic(r)
			}
		}()
	}
	task()
}
