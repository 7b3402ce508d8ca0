package observer

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/a2y-d5l/go-kvobserver/dispatch"
	"github.com/a2y-d5l/go-kvobserver/kvo"
	"github.com/a2y-d5l/go-kvobserver/observability"
)

// Registry owns a set of observations. The zero value is not usable; create
// one with New.
type Registry struct {
	*core
}

// core holds the registry state. It is what observed objects reference, so a
// Registry that becomes unreachable can still be cleaned up.
type core struct {
	name    string
	logger  *observability.RegistryLogger
	metrics *observability.Metrics
	main    dispatch.MainQueue

	mu      sync.Mutex
	lastID  ID
	records map[ID]*record
	closed  bool

	lastToken  atomic.Uint64
	tokens     sync.Map // kvo.Token -> *record
	generation atomic.Uint64
}

// New creates a registry. If the registry is dropped without Close, its
// observations are removed once it has been garbage collected.
func New(opts ...Option) *Registry {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	c := &core{
		name:    cfg.name,
		logger:  observability.NewRegistryLogger(cfg.logger, cfg.name),
		metrics: cfg.metrics,
		main:    cfg.main,
		records: make(map[ID]*record),
	}

	r := &Registry{core: c}
	runtime.AddCleanup(r, func(c *core) { c.close(true) }, c)
	return r
}

// Name returns the registry name.
func (c *core) Name() string { return c.name }

// Observe registers handler for changes of keyPath on obj and returns the new
// observation's ID.
func (c *core) Observe(obj kvo.Observable, keyPath string, options kvo.Options, policy dispatch.Policy, handler Handler, opts ...ObserveOption) ID {
	id, _ := c.observe(obj, keyPath, options, policy, handler, false, opts)
	return id
}

// ObserveIfNeeded is Observe, except that it registers nothing and returns
// false when an observation of keyPath on the same live object is already
// active.
func (c *core) ObserveIfNeeded(obj kvo.Observable, keyPath string, options kvo.Options, policy dispatch.Policy, handler Handler, opts ...ObserveOption) (ID, bool) {
	return c.observe(obj, keyPath, options, policy, handler, true, opts)
}

func (c *core) observe(obj kvo.Observable, keyPath string, options kvo.Options, policy dispatch.Policy, handler Handler, skipIfRegistered bool, opts []ObserveOption) (ID, bool) {
	subject := kvo.SubjectOf(obj)
	switch {
	case subject == nil:
		panic(fmt.Errorf("%w: nil object", ErrInvalidObservation))
	case keyPath == "":
		panic(fmt.Errorf("%w: empty key path", ErrInvalidObservation))
	case handler == nil:
		panic(fmt.Errorf("%w: nil handler for %q", ErrInvalidObservation, keyPath))
	}
	if c.isClosed() {
		panic(fmt.Errorf("%w: observing %q on %s", ErrRegistryClosed, keyPath, c.name))
	}

	var oc observeConfig
	for _, opt := range opts {
		opt(&oc)
	}

	managedObj, isManaged := obj.(Managed)
	raw := isManaged
	if oc.storeAsPointer != nil {
		raw = *oc.storeAsPointer
	}

	rec := &record{
		keyPath: keyPath,
		policy:  policy,
		handler: handler,
	}
	if raw {
		rec.ref = rawRef{h: subject.Handle()}
	} else {
		rec.ref = weakRef{p: weak.Make(subject)}
	}
	rec.initialPending.Store(options.Has(kvo.OptionInitial))

	if policy.InfersContext() {
		var inferred dispatch.Transactional
		if isManaged {
			inferred = managedObj.ManagedContext()
		}
		if isNil(inferred) {
			panic(fmt.Errorf("%w: policy %s on %q", ErrNoInferredContext, policy, keyPath))
		}
		rec.inferred = inferred
	}

	if skipIfRegistered && c.hasEqual(rec) {
		c.metrics.Duplicate()
		c.logger.LogDuplicate(context.Background(), keyPath, policy.String())
		return 0, false
	}

	rec.token = kvo.Token(c.lastToken.Add(1))
	c.tokens.Store(rec.token, rec)

	// A panicking initial handler or a concurrent Close leaves added false;
	// the registration must not outlive the record.
	added := false
	defer func() {
		if !added {
			obj.RemoveObserver(c, keyPath, rec.token)
			c.tokens.Delete(rec.token)
		}
	}()
	obj.AddObserver(c, keyPath, options, rec.token)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		panic(fmt.Errorf("%w: observing %q on %s", ErrRegistryClosed, keyPath, c.name))
	}
	c.lastID++
	id := c.lastID
	rec.id.Store(int64(id))
	c.records[id] = rec
	active := len(c.records)
	c.mu.Unlock()
	added = true

	c.metrics.Registered()
	c.logger.LogObserve(context.Background(), int(id), keyPath, uint64(rec.token), policy.String(), rec.ref.mode(), active)
	return id, true
}

func (c *core) hasEqual(candidate *record) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rec := range c.records {
		if rec.equal(candidate) {
			return true
		}
	}
	return false
}

// StopObserving removes the observation with the given ID. If the observed
// object can still be reached it is deregistered from it. Stopping an ID that
// is not active panics with ErrUnknownID.
func (c *core) StopObserving(id ID) {
	c.mu.Lock()
	rec, ok := c.records[id]
	if !ok {
		c.mu.Unlock()
		panic(fmt.Errorf("%w: %d in %s", ErrUnknownID, id, c.name))
	}
	delete(c.records, id)
	active := len(c.records)
	c.mu.Unlock()

	deregistered := c.release(rec)
	c.logger.LogStop(context.Background(), int(id), rec.keyPath, deregistered, active)
}

// StopObservingIDs stops each ID in turn. The first unknown ID panics and
// leaves the remaining ones active.
func (c *core) StopObservingIDs(ids ...ID) {
	for _, id := range ids {
		c.StopObserving(id)
	}
}

// StopObservingEverything removes every observation. It is safe to call on
// an empty registry and more than once.
func (c *core) StopObservingEverything() {
	removed, skipped := c.stopAll()
	c.logger.LogStopEverything(context.Background(), removed, skipped)
}

func (c *core) stopAll() (removed, skipped int) {
	c.mu.Lock()
	records := c.records
	c.records = make(map[ID]*record)
	c.mu.Unlock()

	for _, id := range slices.Sorted(maps.Keys(records)) {
		if !c.release(records[id]) {
			skipped++
		}
	}
	return len(records), skipped
}

// release deregisters rec where its object can be reached and forgets its
// token. It reports whether a deregistration call was made.
func (c *core) release(rec *record) bool {
	ok := rec.ref.deregister(c, rec.keyPath, rec.token)
	c.tokens.Delete(rec.token)
	c.metrics.Removed(!ok)
	return ok
}

// Close stops every observation and drops work that was scheduled before it
// but has not run yet. Further Observe calls panic with ErrRegistryClosed.
// Close is idempotent and always returns nil.
func (c *core) Close() error {
	c.close(false)
	return nil
}

func (c *core) close(finalized bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	removed, _ := c.stopAll()
	c.generation.Add(1)
	c.logger.LogClose(context.Background(), removed, finalized)
}

func (c *core) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Len returns the number of active observations.
func (c *core) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// IsObserving reports whether id is active.
func (c *core) IsObserving(id ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.records[id]
	return ok
}

// IDs returns the active IDs in increasing order.
func (c *core) IDs() []ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Sorted(maps.Keys(c.records))
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
