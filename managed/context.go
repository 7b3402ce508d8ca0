package managed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/a2y-d5l/go-kvobserver/dispatch"
	"github.com/a2y-d5l/go-kvobserver/observability"
)

// Context owns a set of entities and serializes work on them.
type Context struct {
	name   string
	queue  *dispatch.SerialQueue
	logger observability.Logger

	mu      sync.Mutex
	objects map[*Object]Entity
	closed  bool
}

type config struct {
	logger observability.Logger
}

// Option configures a Context.
type Option func(*config)

// WithLogger sets the context logger.
func WithLogger(logger observability.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// NewContext creates a context and starts its goroutine.
func NewContext(name string, opts ...Option) *Context {
	cfg := &config{logger: observability.Default()}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger.With(slogContext(name))

	return &Context{
		name:    name,
		logger:  logger,
		queue:   dispatch.NewSerialQueue("managed:"+name, dispatch.WithQueueLogger(logger)),
		objects: make(map[*Object]Entity),
	}
}

// Name returns the context name.
func (c *Context) Name() string { return c.name }

// Perform schedules fn on the context.
func (c *Context) Perform(fn func()) {
	c.queue.Async(fn)
}

// PerformAndWait runs fn on the context and waits for it. Called from the
// context itself, it runs fn inline.
func (c *Context) PerformAndWait(fn func()) {
	if c.queue.IsCurrent() {
		fn()
		return
	}
	c.queue.Sync(fn)
}

// IsCurrent reports whether the caller is running on the context.
func (c *Context) IsCurrent() bool { return c.queue.IsCurrent() }

// Insert adds e to the context and calls its AwakeFromInsert hook. The
// context holds e until it is deleted or the context is reset.
func (c *Context) Insert(e Entity) error {
	o := e.managedObject()
	if c.isClosed() {
		return ErrContextClosed
	}

	var err error
	c.PerformAndWait(func() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			err = ErrContextClosed
			return
		}
		if !o.ctx.CompareAndSwap(nil, c) {
			c.mu.Unlock()
			err = fmt.Errorf("%w: %s", ErrAlreadyInserted, c.name)
			return
		}
		o.deleted.Store(false)
		c.objects[o] = e
		c.mu.Unlock()

		c.logger.Debug("object inserted", observability.Operation("insert"))
		if h, ok := e.(AwakeFromInserter); ok {
			h.AwakeFromInsert()
		}
	})
	return err
}

// Delete calls e's WillTurnIntoFault hook, then detaches and marks it deleted.
func (c *Context) Delete(e Entity) error {
	o := e.managedObject()
	if c.isClosed() {
		return ErrContextClosed
	}

	var err error
	c.PerformAndWait(func() {
		if o.ctx.Load() != c {
			err = ErrNotInserted
			return
		}
		c.fault(o, e)
		o.deleted.Store(true)
		c.logger.Debug("object deleted", observability.Operation("delete"))
	})
	return err
}

// Reset turns every object into a fault: each hook runs, then the object is
// detached without being marked deleted.
func (c *Context) Reset() {
	c.PerformAndWait(c.reset)
}

func (c *Context) reset() {
	c.mu.Lock()
	entities := make(map[*Object]Entity, len(c.objects))
	for o, e := range c.objects {
		entities[o] = e
	}
	c.mu.Unlock()

	for o, e := range entities {
		c.fault(o, e)
	}
	if len(entities) > 0 {
		c.logger.Debug("context reset", observability.ActiveCount(len(entities)), observability.Operation("reset"))
	}
}

func (c *Context) fault(o *Object, e Entity) {
	if h, ok := e.(WillTurnIntoFaulter); ok {
		h.WillTurnIntoFault()
	}
	o.ctx.Store(nil)

	c.mu.Lock()
	delete(c.objects, o)
	c.mu.Unlock()
}

func (c *Context) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Len returns the number of objects in the context.
func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.objects)
}

// Close resets the context, refuses further inserts and waits for scheduled
// work to finish.
func (c *Context) Close(ctx context.Context) error {
	if c.isClosed() {
		return nil
	}

	c.PerformAndWait(func() {
		c.reset()
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
	})
	return c.queue.Close(ctx)
}

func slogContext(name string) slog.Attr {
	return slog.String("managed_context", name)
}
