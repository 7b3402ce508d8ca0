package dispatch

import (
	"fmt"
	"reflect"
)

// Kind enumerates the routing policies.
type Kind uint8

const (
	KindDirect Kind = iota
	KindUnsafeSync
	KindAsync
	KindAsyncOnMain
	KindAsyncDirectInitial
	KindAsyncOnMainDirectInitial
	KindDirectOrAsyncOnMain
	KindManagedSync
	KindManagedAsync
	KindManagedSyncDirectInitial
	KindManagedAsyncDirectInitial
	KindManagedInferredSync
	KindManagedInferredAsync
	KindManagedInferredSyncDirectInitial
	KindManagedInferredAsyncDirectInitial
)

var kindNames = [...]string{
	KindDirect:                            "direct",
	KindUnsafeSync:                        "unsafeSync",
	KindAsync:                             "async",
	KindAsyncOnMain:                       "asyncOnMain",
	KindAsyncDirectInitial:                "asyncDirectInitial",
	KindAsyncOnMainDirectInitial:          "asyncOnMainDirectInitial",
	KindDirectOrAsyncOnMain:               "directOrAsyncOnMain",
	KindManagedSync:                       "managedSync",
	KindManagedAsync:                      "managedAsync",
	KindManagedSyncDirectInitial:          "managedSyncDirectInitial",
	KindManagedAsyncDirectInitial:         "managedAsyncDirectInitial",
	KindManagedInferredSync:               "managedInferredSync",
	KindManagedInferredAsync:              "managedInferredAsync",
	KindManagedInferredSyncDirectInitial:  "managedInferredSyncDirectInitial",
	KindManagedInferredAsyncDirectInitial: "managedInferredAsyncDirectInitial",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Policy is a routing kind plus the queue or context it targets. The zero
// value is Direct.
type Policy struct {
	kind    Kind
	queue   Queue
	context Transactional
}

// Direct runs handlers inline on the notifying goroutine.
func Direct() Policy { return Policy{kind: KindDirect} }

// UnsafeSync runs handlers synchronously on q. Delivering on q itself
// deadlocks.
func UnsafeSync(q Queue) Policy { return Policy{kind: KindUnsafeSync, queue: mustQueue(q)} }

// Async runs handlers asynchronously on q.
func Async(q Queue) Policy { return Policy{kind: KindAsync, queue: mustQueue(q)} }

// AsyncOnMain runs handlers asynchronously on the main queue.
func AsyncOnMain() Policy { return Policy{kind: KindAsyncOnMain} }

// AsyncDirectInitial runs the initial notification inline and every other one
// asynchronously on q.
func AsyncDirectInitial(q Queue) Policy {
	return Policy{kind: KindAsyncDirectInitial, queue: mustQueue(q)}
}

// AsyncOnMainDirectInitial runs the initial notification inline and every
// other one asynchronously on the main queue.
func AsyncOnMainDirectInitial() Policy { return Policy{kind: KindAsyncOnMainDirectInitial} }

// DirectOrAsyncOnMain runs handlers inline when notified on the main queue
// and asynchronously on the main queue otherwise.
func DirectOrAsyncOnMain() Policy { return Policy{kind: KindDirectOrAsyncOnMain} }

// ManagedSync runs handlers with c.PerformAndWait.
func ManagedSync(c Transactional) Policy {
	return Policy{kind: KindManagedSync, context: mustContext(c)}
}

// ManagedAsync runs handlers with c.Perform.
func ManagedAsync(c Transactional) Policy {
	return Policy{kind: KindManagedAsync, context: mustContext(c)}
}

// ManagedSyncDirectInitial runs the initial notification inline and every
// other one with c.PerformAndWait.
func ManagedSyncDirectInitial(c Transactional) Policy {
	return Policy{kind: KindManagedSyncDirectInitial, context: mustContext(c)}
}

// ManagedAsyncDirectInitial runs the initial notification inline and every
// other one with c.Perform.
func ManagedAsyncDirectInitial(c Transactional) Policy {
	return Policy{kind: KindManagedAsyncDirectInitial, context: mustContext(c)}
}

// ManagedInferredSync is ManagedSync on the observed object's own context.
func ManagedInferredSync() Policy { return Policy{kind: KindManagedInferredSync} }

// ManagedInferredAsync is ManagedAsync on the observed object's own context.
func ManagedInferredAsync() Policy { return Policy{kind: KindManagedInferredAsync} }

// ManagedInferredSyncDirectInitial is ManagedSyncDirectInitial on the
// observed object's own context.
func ManagedInferredSyncDirectInitial() Policy {
	return Policy{kind: KindManagedInferredSyncDirectInitial}
}

// ManagedInferredAsyncDirectInitial is ManagedAsyncDirectInitial on the
// observed object's own context.
func ManagedInferredAsyncDirectInitial() Policy {
	return Policy{kind: KindManagedInferredAsyncDirectInitial}
}

// Kind returns the routing kind.
func (p Policy) Kind() Kind { return p.kind }

// Queue returns the explicit queue, if the kind carries one.
func (p Policy) Queue() Queue { return p.queue }

// Context returns the explicit managed context, if the kind carries one.
func (p Policy) Context() Transactional { return p.context }

// InfersContext reports whether the policy targets the observed object's own
// managed context.
func (p Policy) InfersContext() bool {
	switch p.kind {
	case KindManagedInferredSync, KindManagedInferredAsync,
		KindManagedInferredSyncDirectInitial, KindManagedInferredAsyncDirectInitial:
		return true
	}
	return false
}

func (p Policy) String() string { return p.kind.String() }

func mustQueue(q Queue) Queue {
	if isNil(q) {
		panic(fmt.Errorf("%w: queue", ErrNilTarget))
	}
	return q
}

func mustContext(c Transactional) Transactional {
	if isNil(c) {
		panic(fmt.Errorf("%w: managed context", ErrNilTarget))
	}
	return c
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
