package helpers

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/a2y-d5l/go-kvobserver/dispatch"
	"github.com/a2y-d5l/go-kvobserver/kvo"
	"github.com/a2y-d5l/go-kvobserver/managed"
	"github.com/a2y-d5l/go-kvobserver/observer"
	"github.com/stretchr/testify/assert"
)

// Counter is a plain observable with one integer property under "value".
type Counter struct {
	kvo.Subject
	Value kvo.Property[int]
}

// NewCounter creates a Counter holding v.
func NewCounter(v int) *Counter {
	c := &Counter{}
	c.Value.Bind(&c.Subject, "value", v)
	return c
}

// ManagedCounter is a Counter owned by a managed context.
type ManagedCounter struct {
	managed.Object
	Value kvo.Property[int]
}

// NewManagedCounter creates a ManagedCounter holding v. It is not inserted.
func NewManagedCounter(v int) *ManagedCounter {
	c := &ManagedCounter{}
	c.Value.Bind(&c.Subject, "value", v)
	return c
}

// Recorder collects the changes handed to its Handle method.
type Recorder struct {
	mu      sync.Mutex
	changes []kvo.Change
}

// Handle is an observer.Handler.
func (r *Recorder) Handle(change *kvo.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, *change)
}

// Handler returns r.Handle as an observer.Handler.
func (r *Recorder) Handler() observer.Handler { return r.Handle }

// Count returns the number of recorded changes.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes)
}

// Changes returns a copy of the recorded changes.
func (r *Recorder) Changes() []kvo.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]kvo.Change(nil), r.changes...)
}

// Last returns the most recent change, or the zero Change.
func (r *Recorder) Last() kvo.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.changes) == 0 {
		return kvo.Change{}
	}
	return r.changes[len(r.changes)-1]
}

// NewTestQueue creates a serial queue closed at the end of the test.
func NewTestQueue(t *testing.T, label string) *dispatch.SerialQueue {
	t.Helper()
	q := dispatch.NewSerialQueue(label)
	t.Cleanup(func() {
		ctx, cancel := WithTestTimeout(5 * time.Second)
		defer cancel()
		if err := q.Close(ctx); err != nil {
			t.Logf("Warning: Error closing test queue: %v", err)
		}
	})
	return q
}

// NewTestContext creates a managed context closed at the end of the test.
func NewTestContext(t *testing.T, name string) *managed.Context {
	t.Helper()
	c := managed.NewContext(name)
	t.Cleanup(func() {
		ctx, cancel := WithTestTimeout(5 * time.Second)
		defer cancel()
		if err := c.Close(ctx); err != nil {
			t.Logf("Warning: Error closing test context: %v", err)
		}
	})
	return c
}

// NewTestRegistry creates a registry closed at the end of the test.
func NewTestRegistry(t *testing.T, opts ...observer.Option) *observer.Registry {
	t.Helper()
	r := observer.New(append([]observer.Option{observer.WithName(t.Name())}, opts...)...)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// Flush waits until everything submitted to q so far has run.
func Flush(q dispatch.Queue) {
	q.Sync(func() {})
}

// FlushContext waits until everything performed on c so far has run.
func FlushContext(c dispatch.Transactional) {
	c.PerformAndWait(func() {})
}

// CollectGarbage runs enough collections for weak pointers to unreachable
// objects to be cleared and their cleanups queued.
func CollectGarbage() {
	runtime.GC()
	runtime.GC()
}

// WithTestTimeout creates a context with a test-appropriate timeout
func WithTestTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}

// AssertEventually fails the test if condition does not hold within a second.
func AssertEventually(t *testing.T, condition func() bool, msg string) {
	t.Helper()
	assert.Eventually(t, condition, time.Second, 5*time.Millisecond, msg)
}

// WaitForCondition waits for a condition to become true within the timeout
func WaitForCondition(condition func() bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RecoverError runs fn and returns the error it panicked with, or nil if it
// returned normally or panicked with a non-error value.
func RecoverError(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err, _ = r.(error)
		}
	}()
	fn()
	return nil
}
